package storefront

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/catalog"
	"github.com/yanizio/storefront/internal/commerce"
	"github.com/yanizio/storefront/internal/form"
	"github.com/yanizio/storefront/internal/i18n"
	"github.com/yanizio/storefront/internal/message"
	"github.com/yanizio/storefront/internal/metrics"
	"github.com/yanizio/storefront/internal/reqctx"
)

// fieldNames maps OrderRequest namespaces to form inputs.
var fieldNames = map[string]string{
	"Email":              "email",
	"Handle":             "handle",
	"Quantity":           "quantity",
	"Shipping.FirstName": "first_name",
	"Shipping.LastName":  "last_name",
	"Shipping.Address1":  "address_1",
	"Shipping.City":      "city",
}

// checkoutView is the checkout template's Data.
type checkoutView struct {
	Product *catalog.Product
	Price   catalog.Money
	Sold    bool
	Form    map[string]string
	Token   string
	Failed  bool
}

func (s *Server) checkoutForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", privateCacheControl)
	q := r.URL.Query()
	s.renderCheckout(w, r, http.StatusOK, map[string]string{
		"handle":   q.Get("handle"),
		"quantity": firstNonEmpty(q.Get("quantity"), "1"),
	}, nil)
}

func (s *Server) checkoutSubmit(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", privateCacheControl)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	values := make(map[string]string, len(fieldNames))
	for _, name := range fieldNames {
		values[name] = strings.TrimSpace(r.PostForm.Get(name))
	}

	if !s.CSRF.Verify(r.PostForm.Get("csrf_token")) {
		s.renderCheckout(w, r, http.StatusForbidden, values, form.FieldErrors{"": "form.error.csrf"})
		return
	}

	rc := reqctx.FromContext(r.Context())
	locale, region := s.Localizer.Set.Default, ""
	if rc != nil {
		locale, region = rc.Locale, rc.Region
	}
	qty, _ := strconv.Atoi(values["quantity"])
	req := commerce.OrderRequest{
		Email:    values["email"],
		Handle:   values["handle"],
		Quantity: qty,
		Region:   region,
		Locale:   locale,
		Shipping: commerce.Address{
			FirstName: values["first_name"],
			LastName:  values["last_name"],
			Address1:  values["address_1"],
			City:      values["city"],
		},
	}
	if err := commerce.Validate(s.validate, &req); err != nil {
		s.renderCheckout(w, r, http.StatusUnprocessableEntity, values, form.FromValidation(err, fieldNames))
		return
	}

	order, err := s.Orders.PlaceOrder(r.Context(), req)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		s.notFound(w, r)
		return
	case errors.Is(err, commerce.ErrNotSold):
		s.renderCheckout(w, r, http.StatusUnprocessableEntity, values, form.FieldErrors{"handle": "form.error.region"})
		return
	case err != nil:
		s.serverError(w, r, err)
		return
	}

	zap.L().Info("order placed",
		zap.String("order", order.ID),
		zap.String("handle", order.Handle),
		zap.Int("qty", order.Quantity),
		zap.String("region", order.Region))
	metrics.OrdersPlaced.WithLabelValues(order.Region).Inc()
	s.sendConfirmation(r.Context(), rc, order)

	http.Redirect(w, r, s.confirmationPath(locale, order.ID), http.StatusSeeOther)
}

// confirmationPath localizes both fixed segments, e.g.
// /ro/comanda/confirmata/{id}.  Only the first is rewritten on the way
// back in, so orderConfirmed accepts either spelling of the second.
func (s *Server) confirmationPath(locale, id string) string {
	v := s.Localizer.Vocab.Vocabulary()
	return "/" + locale + "/" + v.Localize("order", locale) + "/" + v.Localize("confirmed", locale) + "/" + id
}

// sendConfirmation mails the customer after the response.
func (s *Server) sendConfirmation(ctx context.Context, rc *reqctx.RequestContext, o *commerce.Order) {
	send := func(ctx context.Context) {
		if err := s.Mail.Send(ctx, message.OrderConfirmation(o)); err != nil {
			zap.L().Warn("order confirmation", zap.String("order", o.ID), zap.Error(err))
		}
	}
	if rc != nil && rc.Exec != nil {
		rc.Exec.WaitUntil(ctx, send)
		return
	}
	send(context.WithoutCancel(ctx))
}

func (s *Server) renderCheckout(w http.ResponseWriter, r *http.Request, status int, values map[string]string, errs form.FieldErrors) {
	p := s.newPage(r, "")
	p.Head.SetTitle(i18n.T(p.Locale, "checkout.title") + " | " + s.SiteTitle)
	p.Head.Meta(`<meta name="robots" content="noindex">`)
	p.Errors = errs

	cv := &checkoutView{Form: values, Failed: len(errs) > 0}
	if h := values["handle"]; h != "" {
		pr, err := s.Catalog.Get(r.Context(), h)
		if err != nil && !errors.Is(err, catalog.ErrNotFound) {
			s.serverError(w, r, err)
			return
		}
		if pr != nil {
			cv.Product = pr
			cv.Price, cv.Sold = pr.Price(p.Region)
		}
	}
	if cv.Product == nil && status == http.StatusOK {
		status = http.StatusNotFound
	}

	tok, err := s.CSRF.Token()
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	cv.Token = tok
	p.Data = cv
	s.render(w, r, status, "checkout", p)
}

func (s *Server) orderConfirmed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", privateCacheControl)
	if s.Localizer.Vocab.Vocabulary().Canonicalize(chi.URLParam(r, "step")) != "confirmed" {
		s.notFound(w, r)
		return
	}
	o, err := s.Orders.Order(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, commerce.ErrOrderNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	p := s.newPage(r, "")
	p.Head.SetTitle(i18n.T(p.Locale, "order.confirmed") + " | " + s.SiteTitle)
	p.Head.Meta(`<meta name="robots" content="noindex">`)
	p.Data = o
	s.render(w, r, http.StatusOK, "order", p)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

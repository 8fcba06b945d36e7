package i18n

// UI strings keyed by message id, then locale.  Missing locales fall back
// to the default locale, then to the key itself.
var messages = map[string]map[string]string{
	"nav.home":               {"ro": "Acasa", "en": "Home"},
	"nav.products":           {"ro": "Produse", "en": "Products"},
	"nav.faqs":               {"ro": "Intrebari frecvente", "en": "FAQs"},
	"shop.all":               {"ro": "Toate produsele", "en": "Shop all products"},
	"shop.unavailable":       {"ro": "Indisponibil in regiunea ta", "en": "Unavailable in your region"},
	"cart.add":               {"ro": "Adauga in cos", "en": "Add to cart"},
	"checkout.title":         {"ro": "Finalizare comanda", "en": "Checkout"},
	"checkout.contact":       {"ro": "Contact", "en": "Contact"},
	"checkout.email":         {"ro": "Email", "en": "Email"},
	"checkout.firstName":     {"ro": "Prenume", "en": "First name"},
	"checkout.lastName":      {"ro": "Nume", "en": "Last name"},
	"checkout.address":       {"ro": "Adresa", "en": "Address"},
	"checkout.city":          {"ro": "Oras", "en": "City"},
	"checkout.quantity":      {"ro": "Cantitate", "en": "Quantity"},
	"checkout.completeOrder": {"ro": "Finalizeaza comanda", "en": "Complete order"},
	"checkout.invalid":       {"ro": "Verifica campurile marcate.", "en": "Please check the highlighted fields."},
	"order.confirmed":        {"ro": "Comanda confirmata", "en": "Order confirmed"},
	"order.thanks":           {"ro": "Multumim pentru comanda!", "en": "Thank you for your order!"},
	"order.total":            {"ro": "Total", "en": "Total"},
	"faqs.title":             {"ro": "Intrebari frecvente", "en": "Frequently asked questions"},
	"notfound.title":         {"ro": "Pagina nu a fost gasita", "en": "Page not found"},
	"form.error.required":    {"ro": "Camp obligatoriu", "en": "Required"},
	"form.error.email":       {"ro": "Adresa de email invalida", "en": "Invalid email address"},
	"form.error.min":         {"ro": "Valoare prea mica", "en": "Too small"},
	"form.error.max":         {"ro": "Valoare prea mare", "en": "Too large"},
	"form.error.csrf":        {"ro": "Formular expirat, reincarca pagina", "en": "Form expired, please reload"},
	"form.error.region":      {"ro": "Produsul nu se livreaza in regiunea ta", "en": "This product does not ship to your region"},
	"home.hero":              {"ro": "Panouri solare premium pentru independenta ta energetica", "en": "Premium solar panels and equipment for your energy independence"},
}

// T returns the UI string for key in locale.
func T(locale, key string) string {
	m, ok := messages[key]
	if !ok {
		return key
	}
	if s, ok := m[locale]; ok {
		return s
	}
	if s, ok := m["ro"]; ok {
		return s
	}
	return key
}

package appointment

import (
	"github.com/salutdigital/portal/internal/platform/i18n"
)

// label is one option in both portal languages. Stored documents carry
// whichever label the patient picked, so both spellings are accepted, but a
// subcategory must be spelled in the same language as its category.
type label struct {
	es, ca string
}

func (l label) in(loc i18n.Locale) string {
	if loc == i18n.CA {
		return l.ca
	}
	return l.es
}

func (l label) matches(v string) bool {
	return v != "" && (v == l.es || v == l.ca)
}

// spelledIn reports which languages spell v as l. Labels identical in both
// languages report both.
func (l label) spelledIn(v string) (es, ca bool) {
	return v != "" && v == l.es, v != "" && v == l.ca
}

var professionals = []label{
	{"Médico de cabecera", "Metge de capçalera"},
	{"Enfermero/a", "Infermer/a"},
	{"Matrona", "Matrona"},
	{"Extracciones", "Extraccions"},
	{"Vacuna gripe/covid", "Vacuna grip/covid"},
	{"Dentista", "Dentista"},
	{"Higienista dental", "Higienista dental"},
	{"Nutrición", "Nutrició"},
	{"Farmacia", "Farmàcia"},
	{"Trabajadora social", "Treballadora social"},
	{"Otros", "Altres"},
}

// ReasonRule is one row of the reason table: a category and the
// subcategories a request under it must choose from. A category without
// subcategories must not carry one.
type ReasonRule struct {
	name          label
	subcategories []label

	// languages the looked-up category was spelled in
	es, ca bool
}

func (r ReasonRule) RequiresSubcategory() bool {
	return len(r.subcategories) > 0
}

// AllowsSubcategory reports whether v is one of the rule's subcategories in
// the language the category was given in.
func (r ReasonRule) AllowsSubcategory(v string) bool {
	for _, s := range r.subcategories {
		es, ca := s.spelledIn(v)
		if (es && r.es) || (ca && r.ca) {
			return true
		}
	}
	return false
}

var reasonRules = []ReasonRule{
	{name: label{"Consulta general", "Consulta general"}},
	{
		name: label{"Receta médica", "Recepta mèdica"},
		subcategories: []label{
			{"Crónico", "Crònic"},
			{"A demanda", "A demanda"},
			{"Otros", "Altres"},
		},
	},
}

func isProfessional(v string) bool {
	for _, p := range professionals {
		if p.matches(v) {
			return true
		}
	}
	return false
}

// LookupReason finds the rule for a reason category in either language.
func LookupReason(category string) (ReasonRule, bool) {
	for _, r := range reasonRules {
		if r.name.matches(category) {
			r.es, r.ca = r.name.spelledIn(category)
			return r, true
		}
	}
	return ReasonRule{}, false
}

// Catalog is the set of form options in one language.
type Catalog struct {
	Locale        i18n.Locale     `json:"locale"`
	Professionals []string        `json:"profesionales"`
	Categories    []CatalogReason `json:"categorias"`
}

type CatalogReason struct {
	Name          string   `json:"nombre"`
	Subcategories []string `json:"subcategorias"`
}

func CatalogFor(loc i18n.Locale) Catalog {
	c := Catalog{Locale: loc}
	for _, p := range professionals {
		c.Professionals = append(c.Professionals, p.in(loc))
	}
	for _, r := range reasonRules {
		cr := CatalogReason{Name: r.name.in(loc), Subcategories: []string{}}
		for _, s := range r.subcategories {
			cr.Subcategories = append(cr.Subcategories, s.in(loc))
		}
		c.Categories = append(c.Categories, cr)
	}
	return c
}

// Package catalog serves the mock store and customer tables the mission
// generator draws from. The data mirrors the partner network around Itu/SP.
package catalog

import (
	"math/rand"

	"github.com/papaleguas-app/papaleguas/internal/domain"
)

// Source is the narrow contract the mission generator consumes.
type Source interface {
	PickStore() domain.Store
	PickCustomer() domain.Customer
}

// ─── Mock Data ──────────────────────────────────────────────────────────────

var stores = []domain.Store{
	{
		Name:           "Burguer King - Itu",
		Address:        "Av. Dr. Otaviano Pereira Mendes, 363 - Liberdade, Itu - SP",
		Items:          []string{"1x Whopper Especial", "1x Batata Média", "1x Coca-Cola 500ml"},
		CollectionCode: "5520",
	},
	{
		Name:           "Restaurante Tonilu Café e Cervejaria",
		Address:        "Plaza Shopping, Av. Dr. Ermelindo Maffei, 1199 - Jardim Paraiso, Itu - SP",
		Items:          []string{"1x Almoço Executivo", "1x Café Expresso Gourmet", "1x Cerveja Artesanal"},
		CollectionCode: "0981",
	},
	{
		Name:           "Padaria e Conveniência Rebeca",
		Address:        "Av. Dr. Otaviano Pereira Mendes, 1060 - Liberdade, Itu - SP",
		Items:          []string{"10x Pão Francês", "1x Leite Integral 1L", "1x Presunto e Queijo 200g"},
		CollectionCode: "1025",
	},
	{
		Name:           "Big Lanches",
		Address:        "Av. Caetano Ruggieri, 2383 - Parque Res. Mayard, Itu - SP",
		Items:          []string{"1x X-Tudo Completo", "1x Porção de Batata G", "1x Suco de Laranja 500ml"},
		CollectionCode: "4400",
	},
}

var customers = []domain.Customer{
	{
		Name:        "Washington Torres",
		Address:     "Rua das Andradas, 468, Sala 3, Centro - Itu/SP",
		PhoneSuffix: "6461",
	},
	{
		Name:        "Marcio Silva",
		Address:     "Rua Carlos Scalet, 58, Presid. Medici, Itu/SP",
		PhoneSuffix: "1759",
	},
	{
		Name:        "Ricardo Silva",
		Address:     "Rua Paula Souza, 500 - Centro, Itu - SP",
		PhoneSuffix: "9545",
	},
}

// ─── Catalog ────────────────────────────────────────────────────────────────

// Catalog picks uniformly from the mock tables.
type Catalog struct {
	rng *rand.Rand
}

// New creates a catalog with its own seeded random source.
func New(seed int64) *Catalog {
	return &Catalog{rng: rand.New(rand.NewSource(seed))}
}

// NewWithRand creates a catalog sharing the caller's random source.
func NewWithRand(rng *rand.Rand) *Catalog {
	return &Catalog{rng: rng}
}

// PickStore returns a random pickup point.
func (c *Catalog) PickStore() domain.Store {
	return stores[c.rng.Intn(len(stores))]
}

// PickCustomer returns a random drop-off contact.
func (c *Catalog) PickCustomer() domain.Customer {
	return customers[c.rng.Intn(len(customers))]
}

// Stores exposes the full store table (help/partner listings).
func Stores() []domain.Store {
	out := make([]domain.Store, len(stores))
	copy(out, stores)
	return out
}

// Customers exposes the full customer table.
func Customers() []domain.Customer {
	out := make([]domain.Customer, len(customers))
	copy(out, customers)
	return out
}

// Package seed loads the starter catalog and the store wallet. Running it
// again leaves existing rows alone.
package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

type category struct {
	name, slug, description string
}

type product struct {
	name, category, description string
	price                       int64
	stock                       int
}

var categories = []category{
	{"Peralatan Dapur", "peralatan-dapur", "Peralatan masak dan dapur untuk kebutuhan sehari-hari"},
	{"Peralatan Mandi", "peralatan-mandi", "Perlengkapan mandi dan kebersihan pribadi"},
	{"Alat Kebersihan", "alat-kebersihan", "Peralatan untuk membersihkan rumah"},
	{"Elektronik Rumah", "elektronik-rumah", "Peralatan elektronik untuk rumah tangga"},
	{"Perabotan", "perabotan", "Furniture dan perabotan rumah tangga"},
	{"Perlengkapan Tidur", "perlengkapan-tidur", "Kasur, bantal, sprei dan perlengkapan kamar tidur"},
}

var products = []product{
	{"Sofa Minimalis 3 Dudukan", "perabotan", "Sofa minimalis dengan desain modern untuk ruang tamu.", 2500000, 15},
	{"Meja Makan Kayu Jati", "perabotan", "Meja makan solid dari kayu jati asli dengan finishing natural.", 3200000, 8},
	{"Lemari Pakaian 3 Pintu", "perabotan", "Lemari pakaian dengan 3 pintu dan cermin.", 1800000, 12},
	{"Smart TV LED 43 Inch", "elektronik-rumah", "Smart TV LED dengan resolusi 4K Ultra HD.", 4500000, 25},
	{"AC Split 1 PK", "elektronik-rumah", "Air conditioner split 1 PK dengan teknologi inverter.", 3800000, 10},
	{"Set Panci Stainless 5 Pcs", "peralatan-dapur", "Set panci stainless steel anti karat.", 750000, 30},
	{"Rice Cooker 1.8 Liter", "peralatan-dapur", "Rice cooker dengan fungsi memasak dan menghangatkan.", 450000, 20},
	{"Shower Set Minimalis", "peralatan-mandi", "Shower set dengan kepala shower rain.", 650000, 4},
	{"Vacuum Cleaner Portable", "alat-kebersihan", "Vacuum cleaner ringan untuk lantai dan sofa.", 900000, 3},
	{"Kasur Busa Queen Size", "perlengkapan-tidur", "Kasur busa 160 x 200 cm dengan lapisan katun.", 1500000, 6},
}

type Result struct {
	Categories int
	Products   int
}

func Run(ctx context.Context, store repository.Store, log logrus.FieldLogger) (*Result, error) {
	res := &Result{}
	ids := make(map[string]uint64, len(categories))

	err := store.Transaction(ctx, func(tx repository.Store) error {
		for _, c := range categories {
			cat := &domain.Category{Name: c.name, Slug: c.slug, Description: c.description, IsActive: true}
			if err := tx.Products().FirstOrCreateCategory(ctx, cat); err != nil {
				return fmt.Errorf("seed category %s: %w", c.slug, err)
			}
			ids[c.slug] = cat.ID
			res.Categories++
		}

		for _, p := range products {
			categoryID, ok := ids[p.category]
			if !ok {
				return fmt.Errorf("seed product %s: unknown category %s", p.name, p.category)
			}
			prod := &domain.Product{
				CategoryID:  categoryID,
				Name:        p.name,
				Description: p.description,
				Price:       decimal.NewFromInt(p.price),
				Stock:       p.stock,
				IsActive:    true,
			}
			if err := tx.Products().FirstOrCreate(ctx, prod); err != nil {
				return fmt.Errorf("seed product %s: %w", p.name, err)
			}
			res.Products++
		}

		if _, err := tx.Wallets().Ensure(ctx); err != nil {
			return fmt.Errorf("seed wallet: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{"categories": res.Categories, "products": res.Products}).Info("Seed complete")
	return res, nil
}

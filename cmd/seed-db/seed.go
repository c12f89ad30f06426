package main

import (
	"encoding/json"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront/internal/couponfile"
	"github.com/xenking/storefront/internal/domain/catalog"
	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/domain/product"
)

type seedFile struct {
	Categories []categoryJSON          `json:"categories"`
	Products   []productJSON           `json:"products"`
	Coupons    []couponfile.Definition `json:"coupons"`
}

type categoryJSON struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

type productJSON struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      int64   `json:"price"`
	CategoryID *string `json:"categoryId"`
	Image      struct {
		Thumbnail string `json:"thumbnail"`
		Mobile    string `json:"mobile"`
		Tablet    string `json:"tablet"`
		Desktop   string `json:"desktop"`
	} `json:"image"`
}

// seedData is a seed file converted to domain values.
type seedData struct {
	Categories []catalog.CategoryNode
	Products   []product.Product
	Coupons    []coupon.Coupon
}

func parseSeed(data []byte) (*seedData, error) {
	var f seedFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "parse seed JSON")
	}

	out := &seedData{}
	for _, c := range f.Categories {
		out.Categories = append(out.Categories, catalog.CategoryNode{ID: c.ID, Name: c.Name, ParentID: c.ParentID})
	}
	for _, p := range f.Products {
		if p.Price < 0 {
			return nil, errors.Errorf("product %s: negative price", p.ID)
		}
		out.Products = append(out.Products, product.Product{
			ID:         p.ID,
			Name:       p.Name,
			Price:      p.Price,
			CategoryID: p.CategoryID,
			Image: product.Image{
				Thumbnail: p.Image.Thumbnail,
				Mobile:    p.Image.Mobile,
				Tablet:    p.Image.Tablet,
				Desktop:   p.Image.Desktop,
			},
		})
	}
	for _, d := range f.Coupons {
		c, err := d.Coupon()
		if err != nil {
			return nil, err
		}
		out.Coupons = append(out.Coupons, c)
	}
	return out, nil
}

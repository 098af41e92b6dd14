package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the day/month/year format the sales API uses for purchase dates.
const DateLayout = "02/01/2006"

// dateParseLayout also accepts unpadded days and months.
const dateParseLayout = "2/1/2006"

// Sale is one product sale as returned by the sales API.
type Sale struct {
	Product      string    `json:"Produto"`
	Category     string    `json:"Categoria do Produto"`
	Price        float64   `json:"Preço"`
	Freight      float64   `json:"Frete"`
	PurchaseDate time.Time `json:"Data da Compra"`
	Seller       string    `json:"Vendedor"`
	State        string    `json:"Local da compra"`
	Rating       float64   `json:"Avaliação da compra"`
	PaymentType  string    `json:"Tipo de pagamento"`
	Installments int       `json:"Quantidade de parcelas"`
	Lat          float64   `json:"lat"`
	Lon          float64   `json:"lon"`
}

type saleJSON struct {
	Product      string  `json:"Produto"`
	Category     string  `json:"Categoria do Produto"`
	Price        float64 `json:"Preço"`
	Freight      float64 `json:"Frete"`
	PurchaseDate string  `json:"Data da Compra"`
	Seller       string  `json:"Vendedor"`
	State        string  `json:"Local da compra"`
	Rating       float64 `json:"Avaliação da compra"`
	PaymentType  string  `json:"Tipo de pagamento"`
	Installments int     `json:"Quantidade de parcelas"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
}

func (s *Sale) UnmarshalJSON(data []byte) error {
	var raw saleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	date, err := time.Parse(dateParseLayout, raw.PurchaseDate)
	if err != nil {
		return fmt.Errorf("parse purchase date %q: %w", raw.PurchaseDate, err)
	}

	*s = Sale{
		Product:      raw.Product,
		Category:     raw.Category,
		Price:        raw.Price,
		Freight:      raw.Freight,
		PurchaseDate: date,
		Seller:       raw.Seller,
		State:        raw.State,
		Rating:       raw.Rating,
		PaymentType:  raw.PaymentType,
		Installments: raw.Installments,
		Lat:          raw.Lat,
		Lon:          raw.Lon,
	}
	return nil
}

func (s Sale) MarshalJSON() ([]byte, error) {
	return json.Marshal(saleJSON{
		Product:      s.Product,
		Category:     s.Category,
		Price:        s.Price,
		Freight:      s.Freight,
		PurchaseDate: s.PurchaseDate.Format(DateLayout),
		Seller:       s.Seller,
		State:        s.State,
		Rating:       s.Rating,
		PaymentType:  s.PaymentType,
		Installments: s.Installments,
		Lat:          s.Lat,
		Lon:          s.Lon,
	})
}

// Package export writes the filtered dashboard data as a spreadsheet.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/models"
)

const (
	SalesSheet   = "Vendas"
	SellersSheet = "Vendedores"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	salesHeader = []any{
		"Produto", "Categoria do Produto", "Preço", "Frete", "Data da Compra", "Vendedor",
		"Local da compra", "Avaliação da compra", "Tipo de pagamento", "Quantidade de parcelas", "lat", "lon",
	}
	sellersHeader = []any{"Vendedor", "Receita", "Quantidade de Vendas"}
)

// WriteXLSX writes one sheet with the sales rows and one with the seller
// summary.
func WriteXLSX(w io.Writer, sales []models.Sale, sellers []models.SellerSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SalesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SellersSheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", SellersSheet, err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	salesRows := make([][]any, 0, len(sales))
	for _, s := range sales {
		salesRows = append(salesRows, []any{
			s.Product, s.Category, s.Price, s.Freight, s.PurchaseDate.Format(models.DateLayout), s.Seller,
			s.State, s.Rating, s.PaymentType, s.Installments, s.Lat, s.Lon,
		})
	}
	if err := writeSheet(f, SalesSheet, salesHeader, salesRows, bold); err != nil {
		return err
	}

	sellerRows := make([][]any, 0, len(sellers))
	for _, s := range sellers {
		sellerRows = append(sellerRows, []any{s.Seller, s.Revenue, s.Count})
	}
	if err := writeSheet(f, SellersSheet, sellersHeader, sellerRows, bold); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

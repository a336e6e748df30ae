package handlers

import (
	"backend/services"
	"backend/storage"
	"backend/utils"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// DownloadStockTemplate downloads an empty stock CSV template
func DownloadStockTemplate(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment;filename=stock_template.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	header := []string{"Item Code", "Name", "Category", "UoM", "Quantity", "Minimum Stock", "Price"}
	if err := writer.Write(header); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV header"})
		return
	}

	sampleRow := []string{"FIB-ADSS-96", "ADSS Fibre Cable 96F", "Cable", "m", "1000", "200", "18.50"}
	if err := writer.Write(sampleRow); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing sample row"})
		return
	}
}

// DownloadBOQTemplate downloads an empty BOQ CSV template
func DownloadBOQTemplate(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment;filename=boq_template.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	header := []string{"Item Code", "Description", "UoM", "Quantity", "Unit Price", "Needs Quote"}
	if err := writer.Write(header); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV header"})
		return
	}

	sampleRow := []string{"FIB-ADSS-96", "ADSS Fibre Cable 96F", "m", "600", "18.50", "yes"}
	if err := writer.Write(sampleRow); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing sample row"})
		return
	}
}

// ExportCSVStock godoc
// @Summary      Export stock items as CSV
// @Tags         export
// @Produce      text/csv
// @Success      200  {file}  file  "CSV file"
// @Failure      500  {object}  object
// @Router       /api/export_csv_stock [get]
func ExportCSVStock(c *gin.Context) {
	db := storage.GetDB()

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment;filename=stock_export.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	header := []string{"Item Code", "Name", "Category", "UoM", "Quantity", "Minimum Stock", "Price", "Status"}
	if err := writer.Write(header); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV header"})
		return
	}

	ctx, cancel := utils.GetSlowQueryContext(c.Request.Context())
	defer cancel()

	rows, err := db.QueryContext(ctx, `
		SELECT item_code, name, category, uom, quantity_in_stock, minimum_stock, last_purchase_price
		FROM stock_items
		WHERE deleted_at IS NULL
		ORDER BY name`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching stock data"})
		return
	}
	defer rows.Close()

	for rows.Next() {
		var itemCode, name, category, uom string
		var quantity, minimum int
		var price float64
		if err := rows.Scan(&itemCode, &name, &category, &uom, &quantity, &minimum, &price); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning stock data"})
			return
		}

		row := []string{
			itemCode, name, category, uom,
			strconv.Itoa(quantity), strconv.Itoa(minimum),
			fmt.Sprintf("%.2f", price),
			services.StockStatus(quantity, minimum),
		}
		if err := writer.Write(row); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV row"})
			return
		}
	}

	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating stock data"})
		return
	}
}

// ExportCSVBOQ godoc
// @Summary      Export a project's BOQ as CSV
// @Tags         export
// @Produce      text/csv
// @Param        project_id  path  int  true  "Project ID"
// @Success      200  {file}  file  "CSV file"
// @Failure      400  {object}  object
// @Router       /api/export_csv_boq/{project_id} [get]
func ExportCSVBOQ(c *gin.Context) {
	db := storage.GetDB()

	projectIDInt, err := strconv.Atoi(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project_id"})
		return
	}

	var projectName string
	if err := db.QueryRow("SELECT name FROM project WHERE project_id = $1", projectIDInt).Scan(&projectName); err != nil {
		projectName = "project"
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment;filename=boq_export.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	header := []string{"Item Code", "Description", "UoM", "Required", "Allocated", "Remaining", "Unit Price", "Total Price", "Needs Quote", "Status"}
	if err := writer.Write(header); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV header"})
		return
	}

	ctx, cancel := utils.GetSlowQueryContext(c.Request.Context())
	defer cancel()

	rows, err := db.QueryContext(ctx, `
		SELECT COALESCE(item_code, ''), description, COALESCE(uom, ''), required_qty, allocated_qty,
		       unit_price, needs_quote, COALESCE(status_override, '')
		FROM boq_items
		WHERE project_id = $1 AND deleted_at IS NULL
		ORDER BY id`, projectIDInt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching BOQ data"})
		return
	}
	defer rows.Close()

	for rows.Next() {
		var itemCode, description, uom, override string
		var required, allocated int
		var unitPrice float64
		var needsQuote bool
		if err := rows.Scan(&itemCode, &description, &uom, &required, &allocated, &unitPrice, &needsQuote, &override); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning BOQ data"})
			return
		}

		needsQuoteText := "no"
		if needsQuote {
			needsQuoteText = "yes"
		}
		row := []string{
			itemCode, description, uom,
			strconv.Itoa(required), strconv.Itoa(allocated), strconv.Itoa(required - allocated),
			fmt.Sprintf("%.2f", unitPrice),
			fmt.Sprintf("%.2f", float64(required)*unitPrice),
			needsQuoteText,
			services.BOQStatus(required, allocated, override),
		}
		if err := writer.Write(row); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV row"})
			return
		}
	}

	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating BOQ data"})
		return
	}
}

// ExportXLSXStockMovements godoc
// @Summary      Export stock movement ledger as Excel
// @Tags         export
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        stock_item_id  path  int  true  "Stock item ID"
// @Success      200  {file}  file  "Excel file"
// @Failure      400  {object}  object
// @Router       /api/export_xlsx_stock_movements/{stock_item_id} [get]
func ExportXLSXStockMovements(c *gin.Context) {
	db := storage.GetDB()

	stockItemID, err := strconv.Atoi(c.Param("stock_item_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stock_item_id"})
		return
	}

	var itemName, itemCode string
	err = db.QueryRow(`SELECT name, COALESCE(item_code, '') FROM stock_items WHERE id = $1 AND deleted_at IS NULL`, stockItemID).
		Scan(&itemName, &itemCode)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Stock item not found"})
		return
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error closing Excel file"})
		}
	}()

	sheet := "Movements"
	f.SetSheetName("Sheet1", sheet)

	f.SetCellValue(sheet, "A1", "Stock Movement Ledger")
	f.SetCellValue(sheet, "A2", "Item")
	f.SetCellValue(sheet, "B2", itemName)
	f.SetCellValue(sheet, "A3", "Item Code")
	f.SetCellValue(sheet, "B3", itemCode)

	headers := []string{"Date", "Type", "Quantity", "Reference", "Created By"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 5)
		f.SetCellValue(sheet, cell, h)
	}

	ctx, cancel := utils.GetSlowQueryContext(c.Request.Context())
	defer cancel()

	rows, err := db.QueryContext(ctx, `
		SELECT movement_date, movement_type, quantity, COALESCE(reference, ''), COALESCE(created_by, '')
		FROM stock_movements
		WHERE stock_item_id = $1
		ORDER BY movement_date, id`, stockItemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching movements"})
		return
	}
	defer rows.Close()

	rowNum := 6
	runningBalance := 0
	for rows.Next() {
		var movementDate time.Time
		var movementType, reference, createdBy string
		var quantity int
		if err := rows.Scan(&movementDate, &movementType, &quantity, &reference, &createdBy); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning movement"})
			return
		}
		runningBalance += quantity

		values := []interface{}{movementDate.Format("2006-01-02 15:04"), movementType, quantity, reference, createdBy}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
			f.SetCellValue(sheet, cell, v)
		}
		rowNum++
	}

	f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum+1), "Closing Balance")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", rowNum+1), runningBalance)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment;filename=stock_movements.xlsx")
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing Excel file"})
	}
}

// ExportXLSXQuoteComparison godoc
// @Summary      Export quote comparison as Excel
// @Tags         export
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        rfq_id  path  int  true  "RFQ ID"
// @Success      200  {file}  file  "Excel file"
// @Failure      400  {object}  object
// @Router       /api/export_xlsx_quote_comparison/{rfq_id} [get]
func ExportXLSXQuoteComparison(c *gin.Context) {
	db := storage.GetDB()

	rfqID, err := strconv.Atoi(c.Param("rfq_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rfq_id"})
		return
	}

	var rfqNumber string
	if err := db.QueryRow(`SELECT rfq_number FROM rfqs WHERE id = $1 AND deleted_at IS NULL`, rfqID).Scan(&rfqNumber); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "RFQ not found"})
		return
	}

	weights, err := services.DefaultScoreWeights().Normalize()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	rows, err := db.Query(`
		SELECT ri.id, COALESCE(ri.item_code, ''), ri.description,
		       q.id, q.supplier_id, COALESCE(s.name, ''), qi.unit_price,
		       q.lead_time_days, COALESCE(s.rating, 0), q.status
		FROM rfq_items ri
		JOIN quote_items qi ON qi.rfq_item_id = ri.id
		JOIN quotes q ON qi.quote_id = q.id
		LEFT JOIN suppliers s ON q.supplier_id = s.id
		WHERE ri.rfq_id = $1 AND q.deleted_at IS NULL
		ORDER BY ri.id, q.supplier_id`, rfqID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching quote data"})
		return
	}
	defer rows.Close()

	type itemRef struct {
		ItemCode    string
		Description string
	}
	refs := map[int]itemRef{}
	var order []int
	linesByItem := map[int][]services.QuoteLine{}
	for rows.Next() {
		var rfqItemID int
		var ref itemRef
		var line services.QuoteLine
		if err := rows.Scan(
			&rfqItemID, &ref.ItemCode, &ref.Description,
			&line.QuoteID, &line.SupplierID, &line.SupplierName, &line.UnitPrice,
			&line.LeadTimeDays, &line.SupplierRating, &line.QuoteStatus,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error scanning quote data"})
			return
		}
		if _, seen := refs[rfqItemID]; !seen {
			refs[rfqItemID] = ref
			order = append(order, rfqItemID)
		}
		linesByItem[rfqItemID] = append(linesByItem[rfqItemID], line)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error closing Excel file"})
		}
	}()

	sheet := "Comparison"
	f.SetSheetName("Sheet1", sheet)
	f.SetCellValue(sheet, "A1", "Quote Comparison")
	f.SetCellValue(sheet, "A2", "RFQ")
	f.SetCellValue(sheet, "B2", rfqNumber)

	headers := []string{"Item Code", "Description", "Supplier", "Unit Price", "Lead Time (days)", "Price Score", "Lead Time Score", "Quality Score", "Reliability Score", "Final Score", "Best Overall"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(sheet, cell, h)
	}

	rowNum := 5
	for _, rfqItemID := range order {
		ref := refs[rfqItemID]
		comparison := services.CompareItem(rfqItemID, ref.ItemCode, ref.Description, linesByItem[rfqItemID], weights)
		for _, line := range comparison.Lines {
			best := ""
			if line.BestOverall {
				best = "YES"
			}
			values := []interface{}{
				ref.ItemCode, ref.Description, line.SupplierName, line.UnitPrice, line.LeadTimeDays,
				line.PriceScore, line.LeadTimeScore, line.QualityScore, line.ReliabilityScore,
				line.FinalScore, best,
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, rowNum)
				f.SetCellValue(sheet, cell, v)
			}
			rowNum++
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment;filename=quote_comparison.xlsx")
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing Excel file"})
	}
}

package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"backend/models"
	"backend/services"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GenerateRFQPDF godoc
// @Summary      Generate RFQ document as PDF
// @Description  Renders the RFQ with its line items, due date and supplier portal link as a printable document.
// @Tags         RFQ
// @Param        id   path  int  true  "RFQ ID"
// @Success      200  "PDF file"
// @Failure      400  {object}  object
// @Failure      404  {object}  object
// @Router       /api/rfqs/{id}/pdf [get]
func GenerateRFQPDF(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rfqID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RFQ ID"})
			return
		}

		titleCaser := cases.Title(language.Und)

		rfq, err := fetchRFQ(db, `r.id = $1`, rfqID)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "RFQ not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var supplier models.Supplier
		var contact, email, phone, address sql.NullString
		err = db.QueryRow(`
			SELECT name, contact_person, email, phone, address
			FROM suppliers WHERE id = $1`, rfq.SupplierID).
			Scan(&supplier.Name, &contact, &email, &phone, &address)
		if err != nil && err != sql.ErrNoRows {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		supplier.ContactPerson = getStringOrEmpty(contact)
		supplier.Email = getStringOrEmpty(email)
		supplier.Phone = getStringOrEmpty(phone)
		supplier.Address = getStringOrEmpty(address)

		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetMargins(10, 10, 10)

		pdf.SetFont("Arial", "B", 18)
		pdf.Cell(190, 10, "REQUEST FOR QUOTATION")
		pdf.Ln(12)

		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(95, 6, fmt.Sprintf("RFQ No: %s", rfq.RFQNumber))
		pdf.Cell(95, 6, fmt.Sprintf("Due Date: %s", rfq.DueDate.Format("02-Jan-2006")))
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(95, 6, fmt.Sprintf("RFQ Date: %s", rfq.RFQDate.Format("02-Jan-2006")))
		pdf.Cell(95, 6, fmt.Sprintf("Status: %s", titleCaser.String(rfq.Status)))
		pdf.Ln(6)
		pdf.Cell(190, 6, fmt.Sprintf("Project: %s", rfq.ProjectName))
		pdf.Ln(10)

		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(190, 8, "Supplier")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(190, 6, fmt.Sprintf(
			"%s\n%s\n%s\n%s\n%s",
			supplier.Name, supplier.ContactPerson, supplier.Address, supplier.Email, supplier.Phone,
		), "", "", false)
		pdf.Ln(6)

		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(25, 8, "Item Code", "1", 0, "L", true, 0, "")
		pdf.CellFormat(75, 8, "Description", "1", 0, "L", true, 0, "")
		pdf.CellFormat(15, 8, "UoM", "1", 0, "C", true, 0, "")
		pdf.CellFormat(20, 8, "Qty", "1", 0, "C", true, 0, "")
		pdf.CellFormat(25, 8, "Est. Price", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 8, "Est. Total", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, item := range rfq.Items {
			lineTotal := float64(item.Quantity) * item.EstimatedPrice
			description := item.Description
			if item.Specification != "" {
				description = fmt.Sprintf("%s (%s)", item.Description, item.Specification)
			}
			if len(description) > 48 {
				description = description[:45] + "..."
			}
			pdf.CellFormat(25, 8, item.ItemCode, "1", 0, "L", false, 0, "")
			pdf.CellFormat(75, 8, description, "1", 0, "L", false, 0, "")
			pdf.CellFormat(15, 8, item.UoM, "1", 0, "C", false, 0, "")
			pdf.CellFormat(20, 8, strconv.Itoa(item.Quantity), "1", 0, "C", false, 0, "")
			pdf.CellFormat(25, 8, fmt.Sprintf("%.2f", item.EstimatedPrice), "1", 0, "R", false, 0, "")
			pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", lineTotal), "1", 1, "R", false, 0, "")
		}

		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(160, 8, "Total Estimated Amount")
		pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", rfq.TotalEstimatedAmount), "1", 1, "R", false, 0, "")

		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(190, 8, "How to Quote:")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(190, 6, fmt.Sprintf(
			"Submit your quote through the supplier portal before %s:\n%s",
			rfq.DueDate.Format("02-Jan-2006"), services.PortalLink(portalBaseURL(), rfq.PortalToken, rfq.SupplierID),
		), "", "L", false)

		pdf.SetY(-20)
		pdf.SetFont("Arial", "I", 8)
		pdf.Cell(190, 6, "This is a computer-generated document. No signature required.")
		pdf.Ln(5)
		pdf.Cell(190, 6, "Generated on: "+time.Now().Format("2006-01-02 15:04:05"))

		c.Header("Content-Type", "application/pdf")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", rfq.RFQNumber))
		if err := pdf.Output(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
			return
		}
	}
}

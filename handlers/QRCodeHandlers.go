package handlers

import (
	"backend/services"
	"bytes"
	"database/sql"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

// addLabel draws regular text onto the image.
func addLabel(img *image.RGBA, x, y int, label string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{0, 0, 0, 255}),
		Face: inconsolata.Regular8x16,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(x * 64),
			Y: fixed.Int26_6(y * 64),
		},
	}
	d.DrawString(label)
}

// addLabelBold draws bold text for field names.
func addLabelBold(img *image.RGBA, x, y int, label string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{30, 30, 30, 255}),
		Face: inconsolata.Bold8x16,
		Dot: fixed.Point26_6{
			X: fixed.Int26_6(x * 64),
			Y: fixed.Int26_6(y * 64),
		},
	}
	d.DrawString(label)
}

func truncateLabel(s string, max int) string {
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}

// GenerateRFQPortalQR godoc
// @Summary      Generate supplier portal QR code as JPEG
// @Description  Renders the supplier portal link for an RFQ as a QR code with the RFQ number, supplier and due date printed underneath. Suppliers scan it to open the quote submission page.
// @Tags         qr
// @Param        id   path      int  true  "RFQ ID"
// @Success      200  {file}    file  "JPEG image"
// @Failure      400  {object}  object
// @Failure      404  {object}  object
// @Router       /api/rfqs/{id}/qr [get]
func GenerateRFQPortalQR(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rfqID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid RFQ ID"})
			return
		}

		var rfqNumber, portalToken string
		var supplierID int
		var supplierName sql.NullString
		var dueDate time.Time
		err = db.QueryRow(`
			SELECT r.rfq_number, r.portal_token, r.supplier_id, s.name, r.due_date
			FROM rfqs r
			LEFT JOIN suppliers s ON r.supplier_id = s.id
			WHERE r.id = $1 AND r.deleted_at IS NULL`, rfqID).
			Scan(&rfqNumber, &portalToken, &supplierID, &supplierName, &dueDate)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "RFQ not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch RFQ details"})
			return
		}

		link := services.PortalLink(portalBaseURL(), portalToken, supplierID)

		qr, err := qrcode.New(link, qrcode.Medium)
		if err != nil {
			c.String(http.StatusInternalServerError, "QR code generation failed")
			return
		}
		qrImg := qr.Image(512)

		qrSize := qrImg.Bounds().Dy()
		padding := 30
		lineHeight := 28
		textAreaHeight := 3*lineHeight + padding
		totalHeight := qrSize + padding + textAreaHeight

		combinedImg := image.NewRGBA(image.Rect(0, 0, qrSize, totalHeight))
		draw.Draw(combinedImg, combinedImg.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)
		draw.Draw(combinedImg, image.Rect(0, 0, qrSize, qrSize), qrImg, image.Point{}, draw.Src)

		separatorY := qrSize + padding/2
		for x := 0; x < qrSize; x++ {
			combinedImg.Set(x, separatorY, color.RGBA{200, 200, 200, 255})
		}

		startY := qrSize + padding + lineHeight
		xPos := 20

		addLabelBold(combinedImg, xPos, startY, "RFQ:")
		addLabel(combinedImg, xPos+120, startY, rfqNumber)

		addLabelBold(combinedImg, xPos, startY+lineHeight, "Supplier:")
		addLabel(combinedImg, xPos+120, startY+lineHeight, truncateLabel(getStringOrEmpty(supplierName), 30))

		addLabelBold(combinedImg, xPos, startY+2*lineHeight, "Quote By:")
		addLabel(combinedImg, xPos+120, startY+2*lineHeight, dueDate.Format("2006-01-02"))

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, combinedImg, nil); err != nil {
			c.String(http.StatusInternalServerError, "JPEG encoding failed")
			return
		}

		c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
	}
}

// Package extractor pulls raw text out of MPESA statement PDFs. The core
// pipeline consumes the extracted lines; it never touches PDF internals
// itself.
package extractor

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ErrPasswordRequired is returned when the PDF is encrypted and the
// supplied password is empty or wrong.
var ErrPasswordRequired = errors.New("PDF is encrypted: password missing or incorrect")

// ExtractText reads a PDF file and returns the text content of each page.
// MPESA statements are machine-generated, but extraction quality still
// varies by producer, so several methods are tried and gated on a
// readability check. The external pdftotext command (poppler-utils) is the
// last resort.
func ExtractText(filePath, password string) ([]string, error) {
	pages, libErr := extractWithLibrary(filePath, password)
	if libErr == nil && isReadableText(pages) {
		return pages, nil
	}
	if errors.Is(libErr, ErrPasswordRequired) {
		return nil, libErr
	}

	popplerPages, popplerErr := extractWithPdftotext(filePath, password)
	if popplerErr == nil && isReadableText(popplerPages) {
		return popplerPages, nil
	}

	if libErr != nil {
		return nil, fmt.Errorf("PDF text extraction failed: %v", libErr)
	}
	return nil, fmt.Errorf("no readable text could be extracted from PDF; the file may be image-based or use font encodings that cannot be decoded")
}

// ExtractLines returns the statement as flat text lines across all pages.
func ExtractLines(filePath, password string) ([]string, error) {
	pages, err := ExtractText(filePath, password)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, page := range pages {
		for _, line := range strings.Split(page, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines, nil
}

func extractWithLibrary(filePath, password string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, openErr := os.Open(filePath)
	if openErr != nil {
		return nil, openErr
	}
	defer f.Close()

	st, statErr := f.Stat()
	if statErr != nil {
		return nil, statErr
	}

	// NewReaderEncrypted calls the password func until it returns "";
	// handing the same password back twice would loop forever on a wrong
	// password, so give it exactly one shot.
	asked := false
	r, readErr := pdf.NewReaderEncrypted(f, st.Size(), func() string {
		if asked || password == "" {
			return ""
		}
		asked = true
		return password
	})
	if readErr != nil {
		if strings.Contains(strings.ToLower(readErr.Error()), "password") ||
			strings.Contains(strings.ToLower(readErr.Error()), "encrypt") {
			return nil, ErrPasswordRequired
		}
		return nil, readErr
	}

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	// Method 1: row-based extraction (best layout preservation)
	pages = extractByRow(r, numPages)
	if isReadableText(pages) {
		return pages, nil
	}

	// Method 2: coordinate-based row reconstruction
	pages = extractByContent(r, numPages)
	if isReadableText(pages) {
		return pages, nil
	}

	// Method 3: whole-document plain text
	plainText := extractByReaderPlainText(r)
	if isReadableText([]string{plainText}) {
		return []string{plainText}, nil
	}

	return pages, nil
}

func extractByRow(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			line := strings.TrimSpace(strings.Join(parts, " "))
			if line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// extractByContent groups text pieces by Y coordinate to reconstruct rows,
// then sorts each row by X.
func extractByContent(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		if len(content.Text) == 0 {
			continue
		}

		type textItem struct {
			x float64
			s string
		}
		rowMap := make(map[int][]textItem)
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			yKey := int(math.Round(t.Y))
			rowMap[yKey] = append(rowMap[yKey], textItem{x: t.X, s: t.S})
		}

		// PDF Y runs bottom-to-top
		yKeys := make([]int, 0, len(rowMap))
		for y := range rowMap {
			yKeys = append(yKeys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

		var lines []string
		for _, y := range yKeys {
			items := rowMap[y]
			sort.Slice(items, func(a, b int) bool {
				return items[a].x < items[b].x
			})

			var parts []string
			var prevX float64
			for j, item := range items {
				if j > 0 && item.x-prevX > 15 {
					parts = append(parts, "  ")
				}
				parts = append(parts, item.s)
				prevX = item.x
			}
			line := strings.TrimSpace(strings.Join(parts, ""))
			if line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

func extractByReaderPlainText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// extractWithPdftotext shells out to poppler-utils for PDFs the Go library
// cannot handle. The user password is forwarded with -upw.
func extractWithPdftotext(filePath, password string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %v", err)
	}

	var pwArgs []string
	if password != "" {
		pwArgs = []string{"-upw", password}
	}

	numPages := 1
	infoArgs := append(append([]string{}, pwArgs...), filePath)
	if out, err := exec.Command("pdfinfo", infoArgs...).Output(); err == nil {
		for _, line := range strings.Split(string(out), "\n") {
			if strings.HasPrefix(line, "Pages:") {
				if n, parseErr := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:"))); parseErr == nil && n > 0 {
					numPages = n
				}
			}
		}
	}

	var pages []string
	for i := 1; i <= numPages; i++ {
		pageStr := strconv.Itoa(i)
		args := append([]string{"-layout"}, pwArgs...)
		args = append(args, "-f", pageStr, "-l", pageStr, filePath, "-")
		out, err := exec.Command("pdftotext", args...).Output()
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(string(out)); text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		args := append([]string{"-layout"}, pwArgs...)
		args = append(args, filePath, "-")
		out, err := exec.Command("pdftotext", args...).Output()
		if err != nil {
			return nil, fmt.Errorf("pdftotext failed: %v", err)
		}
		if text := strings.TrimSpace(string(out)); text != "" {
			return []string{text}, nil
		}
		return nil, fmt.Errorf("pdftotext produced no output")
	}

	return pages, nil
}

// textQuality returns the ratio of readable ASCII characters to total
// characters. A strict ASCII check avoids counting the accented garbage
// that identity-encoded fonts produce.
func textQuality(pages []string) float64 {
	total := 0
	readable := 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
				strings.ContainsRune(`.,-/:;()'"%&@#!?+=*`, r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

// commonWords that appear in virtually all MPESA statements. Extracted text
// containing none of them is likely garbage.
var commonWords = []string{
	"mpesa", "m-pesa", "statement", "customer", "completed", "balance",
	"paid in", "withdrawn", "receipt", "transaction", "amount", "details",
	"completion time", "charge", "total", "safaricom",
}

func containsCommonWords(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range commonWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// isReadableText requires enough text, a high readable-character ratio, and
// at least one recognizable statement word.
func isReadableText(pages []string) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	return containsCommonWords(pages)
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}

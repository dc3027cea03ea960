// Package api exposes the pipeline over HTTP for interactive use.
// Progress is streamed as NDJSON, one event per line, with the result
// carried on the final line. Quotas, billing, and persistence are the
// embedding service's concern, not this adapter's.
package api

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/Ahmedin-Jamil/QuickConverter/internal/pipeline"
)

// Handler wires the pipeline into Fiber routes.
type Handler struct {
	Pipeline *pipeline.Pipeline
}

// Register sets up the HTTP routes on the given app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/api/health", h.handleHealth)
	app.Post("/api/convert", h.handleConvert)
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// progressLine is one NDJSON line of the conversion stream.
type progressLine struct {
	Percent  int    `json:"p"`
	Status   string `json:"status"`
	Success  *bool  `json:"success,omitempty"`
	Error    string `json:"error,omitempty"`
	Stats    any    `json:"stats,omitempty"`
	Preview  any    `json:"preview,omitempty"`
	File     string `json:"file,omitempty"`
	FileName string `json:"fileName,omitempty"`
}

func (h *Handler) handleConvert(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "no file uploaded; use form field 'file'",
		})
	}

	sourceFormat := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileHeader.Filename)), ".")
	targetFormat := c.FormValue("to", "xlsx")

	tmp, err := os.CreateTemp("", "statement-*"+filepath.Ext(fileHeader.Filename))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create temp file",
		})
	}
	tmpPath := tmp.Name()
	tmp.Close()
	if err := c.SaveFile(fileHeader, tmpPath); err != nil {
		os.Remove(tmpPath)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to save uploaded file",
		})
	}

	outName := outputName(fileHeader.Filename, targetFormat)

	c.Set(fiber.HeaderContentType, "application/x-ndjson")
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer os.Remove(tmpPath)
		enc := json.NewEncoder(w)

		for ev := range h.Pipeline.Process(tmpPath, sourceFormat, targetFormat) {
			line := progressLine{Percent: ev.Percent, Status: ev.Message}
			if ev.Result != nil {
				success := ev.Result.Success
				line.Success = &success
				if success {
					line.Stats = ev.Result.Stats
					line.Preview = ev.Result.Preview
					line.File = base64.StdEncoding.EncodeToString(ev.Result.OutputBuffer)
					line.FileName = outName
				} else {
					line.Error = ev.Result.Error
				}
			}
			if err := enc.Encode(line); err != nil {
				return
			}
			w.Flush()
		}
	}))
	return nil
}

func outputName(inputName, targetFormat string) string {
	base := strings.TrimSuffix(filepath.Base(inputName), filepath.Ext(inputName))
	return fmt.Sprintf("%s.%s", base, targetFormat)
}

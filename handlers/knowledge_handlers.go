package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"chatdesk/api/apperrors"
	"chatdesk/api/models"
	"chatdesk/api/store"
)

const maxImportBytes = 2 << 20

var csvHeader = []string{"Question", "Answer", "Category"}

var templateRows = [][]string{
	{"What are your business hours?", "We're open Monday to Friday 9am-5pm", "General"},
	{"How can I contact support?", "You can reach us at support@example.com", "Support"},
}

type KnowledgeHandlers struct {
	Stores *store.Stores
}

func NewKnowledgeHandlers(stores *store.Stores) *KnowledgeHandlers {
	return &KnowledgeHandlers{Stores: stores}
}

// List returns the knowledge items of a business with the sorted set of
// categories in use.
func (h *KnowledgeHandlers) List(c *gin.Context) {
	business, ok := ownedBusiness(c, h.Stores)
	if !ok {
		return
	}
	items, err := h.Stores.Knowledge.ListKnowledge(c.Request.Context(), business.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.KnowledgeList{Items: items, Categories: categoriesOf(items)})
}

func (h *KnowledgeHandlers) Create(c *gin.Context) {
	business, ok := ownedBusiness(c, h.Stores)
	if !ok {
		return
	}
	var req models.KnowledgeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	item, err := h.Stores.Knowledge.CreateKnowledge(c.Request.Context(), business.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *KnowledgeHandlers) Update(c *gin.Context) {
	business, ok := ownedBusiness(c, h.Stores)
	if !ok {
		return
	}
	var req models.KnowledgeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	item, err := h.Stores.Knowledge.UpdateKnowledge(c.Request.Context(), c.Param("itemId"), business.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *KnowledgeHandlers) Delete(c *gin.Context) {
	business, ok := ownedBusiness(c, h.Stores)
	if !ok {
		return
	}
	if err := h.Stores.Knowledge.DeleteKnowledge(c.Request.Context(), c.Param("itemId"), business.ID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Import bulk-loads a "Question,Answer,Category" CSV uploaded as the "file"
// form field. The header row is skipped, as are rows missing a question or
// an answer.
func (h *KnowledgeHandlers) Import(c *gin.Context) {
	business, ok := ownedBusiness(c, h.Stores)
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperrors.Validation("Please select a CSV file"))
		return
	}
	if fh.Size > maxImportBytes {
		respondError(c, apperrors.Validation("CSV file is too large"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, apperrors.Validation("Failed to read uploaded file"))
		return
	}
	defer f.Close()

	items, err := parseKnowledgeCSV(f)
	if err != nil {
		respondError(c, err)
		return
	}

	n, err := h.Stores.Knowledge.ImportKnowledge(c.Request.Context(), business.ID, items)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Info().Str("business_id", business.ID).Int("count", n).Msg("Knowledge items imported")
	c.JSON(http.StatusCreated, gin.H{"imported": n})
}

func (h *KnowledgeHandlers) Export(c *gin.Context) {
	business, ok := ownedBusiness(c, h.Stores)
	if !ok {
		return
	}
	items, err := h.Stores.Knowledge.ListKnowledge(c.Request.Context(), business.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		category := ""
		if item.Category != nil {
			category = *item.Category
		}
		rows = append(rows, []string{item.Question, item.Answer, category})
	}
	writeCSV(c, "knowledge_base.csv", rows)
}

func (h *KnowledgeHandlers) Template(c *gin.Context) {
	writeCSV(c, "knowledge_base_template.csv", templateRows)
}

func parseKnowledgeCSV(r io.Reader) ([]models.KnowledgeItemRequest, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	items := []models.KnowledgeItemRequest{}
	header := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindValidation, err, "Failed to import FAQs. Check CSV format.")
		}
		if header {
			header = false
			continue
		}
		if len(record) < 2 {
			continue
		}
		question := strings.TrimSpace(record[0])
		answer := strings.TrimSpace(record[1])
		if question == "" || answer == "" {
			continue
		}
		item := models.KnowledgeItemRequest{Question: question, Answer: answer}
		if len(record) > 2 {
			if category := strings.TrimSpace(record[2]); category != "" {
				item.Category = &category
			}
		}
		items = append(items, item)
	}

	if len(items) == 0 {
		return nil, apperrors.Validation("No valid items found in CSV")
	}
	return items, nil
}

func writeCSV(c *gin.Context, filename string, rows [][]string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(csvHeader)
	_ = w.WriteAll(rows)
	if err := w.Error(); err != nil {
		log.Error().Err(err).Str("file", filename).Msg("Failed to write CSV")
	}
}

func categoriesOf(items []models.KnowledgeItem) []string {
	seen := map[string]struct{}{}
	categories := []string{}
	for _, item := range items {
		if item.Category == nil || *item.Category == "" {
			continue
		}
		if _, ok := seen[*item.Category]; ok {
			continue
		}
		seen[*item.Category] = struct{}{}
		categories = append(categories, *item.Category)
	}
	sort.Strings(categories)
	return categories
}

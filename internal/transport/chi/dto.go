package chi

import (
	"time"

	"github.com/veldt-labs/modex/internal/domain"
	"github.com/veldt-labs/modex/internal/usecase/scrape"
)

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

const (
	codeBadRequest        ErrorResponseCode = "bad_request"
	codeEmptyText         ErrorResponseCode = "empty_text"
	codeNotFound          ErrorResponseCode = "not_found"
	codeUnrecognizedLabel ErrorResponseCode = "unrecognized_label"
	codeClassifierError   ErrorResponseCode = "classifier_unavailable"
	codeEmbeddingError    ErrorResponseCode = "embedding_provider_error"
	codeInternalError     ErrorResponseCode = "internal_error"
)

// ErrorResponse is the JSON error body for all endpoints.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

type classifyRequest struct {
	Text        string `json:"text"`
	ContentType string `json:"content_type,omitempty"`
}

type classifyResponse struct {
	Text            string `json:"text"`
	ProcessedResult string `json:"processed_result"`
}

type scrapedContentDTO struct {
	URL       string         `json:"url"`
	Text      string         `json:"text"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type scrapeRequest struct {
	Content []scrapedContentDTO `json:"content"`
}

type scrapeResponse struct {
	Message        string `json:"message"`
	BatchID        string `json:"batch_id"`
	TotalItems     int    `json:"total_items"`
	ProcessedItems int    `json:"processed_items"`
}

type scrapePreview struct {
	URL         string         `json:"url"`
	TextPreview string         `json:"text_preview"`
	Timestamp   *time.Time     `json:"timestamp,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type scrapeListResponse struct {
	BatchID    string          `json:"batch_id"`
	TotalItems int             `json:"total_items"`
	Contents   []scrapePreview `json:"contents"`
}

type scrapeDetail struct {
	URL       string         `json:"url"`
	FullText  string         `json:"full_text"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type itemResultDTO struct {
	URL    string `json:"url"`
	Text   string `json:"text"`
	Result string `json:"result"`
}

type resultListResponse struct {
	BatchID      string          `json:"batch_id"`
	TotalResults int             `json:"total_results"`
	Results      []itemResultDTO `json:"results"`
}

type batchDetailResponse struct {
	BatchID        string          `json:"batch_id"`
	ReceivedAt     time.Time       `json:"received_at"`
	TotalItems     int             `json:"total_items"`
	ProcessedItems int             `json:"processed_items"`
	Contents       []scrapePreview `json:"contents"`
}

func itemToDomain(dto scrapedContentDTO) domain.ScrapedItem {
	return domain.ScrapedItem{
		URL:       dto.URL,
		Text:      dto.Text,
		Timestamp: dto.Timestamp,
		Metadata:  dto.Metadata,
	}
}

func itemToPreview(item domain.ScrapedItem) scrapePreview {
	return scrapePreview{
		URL:         item.URL,
		TextPreview: item.Preview(),
		Timestamp:   item.Timestamp,
		Metadata:    item.Metadata,
	}
}

func itemToDetail(item domain.ScrapedItem) scrapeDetail {
	return scrapeDetail{
		URL:       item.URL,
		FullText:  item.Text,
		Timestamp: item.Timestamp,
		Metadata:  item.Metadata,
	}
}

func resultToDTO(r domain.ItemResult) itemResultDTO {
	return itemResultDTO{
		URL:    r.URL,
		Text:   r.Text,
		Result: string(r.Label),
	}
}

func batchToDetail(b scrape.Batch) batchDetailResponse {
	contents := make([]scrapePreview, len(b.Items))
	for i, item := range b.Items {
		contents[i] = itemToPreview(item)
	}
	return batchDetailResponse{
		BatchID:        b.ID,
		ReceivedAt:     b.ReceivedAt,
		TotalItems:     len(b.Items),
		ProcessedItems: len(b.Results),
		Contents:       contents,
	}
}

func batchToResults(b scrape.Batch) resultListResponse {
	results := make([]itemResultDTO, len(b.Results))
	for i, r := range b.Results {
		results[i] = resultToDTO(r)
	}
	return resultListResponse{
		BatchID:      b.ID,
		TotalResults: len(b.Results),
		Results:      results,
	}
}

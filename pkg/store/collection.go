package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

// Collection exposes record operations for one named collection.
type Collection struct {
	client *Client
	name   string
}

// ListOptions carry the store's textual query surface. Filter and Sort are
// store-native strings; build them with internal/query, never by concatenating
// raw user input.
type ListOptions struct {
	Filter string
	Sort   string
	Expand string
}

// ListResult is one page of records.
type ListResult struct {
	Page       int      `json:"page"`
	PerPage    int      `json:"perPage"`
	TotalItems int      `json:"totalItems"`
	TotalPages int      `json:"totalPages"`
	Items      []Record `json:"items"`
}

// File is one multipart upload part.
type File struct {
	Field  string
	Name   string
	Reader io.Reader
}

func (c *Collection) basePath() string {
	return "/api/collections/" + url.PathEscape(c.name) + "/records"
}

// GetList fetches one page of records matching the filter/sort options.
func (c *Collection) GetList(ctx context.Context, page, perPage int, opt ListOptions) (*ListResult, error) {
	query := map[string]string{
		"page":    strconv.Itoa(page),
		"perPage": strconv.Itoa(perPage),
	}
	if opt.Filter != "" {
		query["filter"] = opt.Filter
	}
	if opt.Sort != "" {
		query["sort"] = opt.Sort
	}
	if opt.Expand != "" {
		query["expand"] = opt.Expand
	}
	var result ListResult
	if err := c.client.send(ctx, http.MethodGet, c.basePath(), query, nil, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetOne fetches a single record by id.
func (c *Collection) GetOne(ctx context.Context, id string) (Record, error) {
	var record Record
	if err := c.client.send(ctx, http.MethodGet, c.basePath()+"/"+url.PathEscape(id), nil, nil, "", &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Create inserts a record from a JSON-encodable body.
func (c *Collection) Create(ctx context.Context, body interface{}) (Record, error) {
	var record Record
	if err := c.client.sendJSON(ctx, http.MethodPost, c.basePath(), body, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Update patches a record by id.
func (c *Collection) Update(ctx context.Context, id string, body interface{}) (Record, error) {
	var record Record
	if err := c.client.sendJSON(ctx, http.MethodPatch, c.basePath()+"/"+url.PathEscape(id), body, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes a record by id.
func (c *Collection) Delete(ctx context.Context, id string) error {
	return c.client.send(ctx, http.MethodDelete, c.basePath()+"/"+url.PathEscape(id), nil, nil, "", nil)
}

// CreateMultipart inserts a record with binary file attachments.
func (c *Collection) CreateMultipart(ctx context.Context, fields map[string]string, files []File) (Record, error) {
	return c.multipart(ctx, http.MethodPost, c.basePath(), fields, files)
}

// UpdateMultipart patches a record with binary file attachments.
func (c *Collection) UpdateMultipart(ctx context.Context, id string, fields map[string]string, files []File) (Record, error) {
	return c.multipart(ctx, http.MethodPatch, c.basePath()+"/"+url.PathEscape(id), fields, files)
}

func (c *Collection) multipart(ctx context.Context, method, path string, fields map[string]string, files []File) (Record, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("write multipart field %q: %w", key, err)
		}
	}
	for _, file := range files {
		part, err := writer.CreateFormFile(file.Field, file.Name)
		if err != nil {
			return nil, fmt.Errorf("create multipart file %q: %w", file.Field, err)
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return nil, fmt.Errorf("copy multipart file %q: %w", file.Field, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	var record Record
	if err := c.client.send(ctx, method, path, nil, &buf, writer.FormDataContentType(), &record); err != nil {
		return nil, err
	}
	return record, nil
}

package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 250
)

var ErrInvalidPageToken = errors.New("invalid_page_token")

type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

// Size clamps the requested page size into [1, MaxPageSize].
func (p Pagination) Size() int {
	switch {
	case p.PageSize <= 0:
		return DefaultPageSize
	case p.PageSize > MaxPageSize:
		return MaxPageSize
	default:
		return p.PageSize
	}
}

type Cursor struct {
	ID        string `json:"id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token,omitempty"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return nil, ErrInvalidPageToken
	}

	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, ErrInvalidPageToken
	}
	if cursor.ID == "" || cursor.CreatedAt == "" {
		return nil, ErrInvalidPageToken
	}
	return &cursor, nil
}

// BuildCursorPageInfo expects data fetched with limit+1 rows and trims the
// extra row. It returns the page to render together with its PageInfo.
func BuildCursorPageInfo[T any](data []T, limit int, extractCursor func(T) Cursor) ([]T, PageInfo, error) {
	if len(data) <= limit {
		return data, PageInfo{HasMore: false}, nil
	}

	page := data[:limit]
	token, err := EncodeCursor(extractCursor(page[len(page)-1]))
	if err != nil {
		return nil, PageInfo{}, err
	}
	return page, PageInfo{HasMore: true, NextPageToken: token}, nil
}

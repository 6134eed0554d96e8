package pagination

import (
	"encoding/base64"
	"encoding/json"
)

type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size,default=25" validate:"gte=1,lte=250"`
}

type Cursor struct {
	ID string `json:"id,omitempty"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(c Cursor) string {
	b, _ := json.Marshal(c)
	return base64.StdEncoding.EncodeToString(b)
}

func DecodeCursor(token string) (*Cursor, error) {
	b, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}

	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, err
	}
	return &cursor, nil
}

// BuildPageInfo trims an over-fetched result set down to the requested page
// size and reports whether more rows remain.
func BuildPageInfo[T any](rows []T, size int, cursorOf func(T) string) ([]T, PageInfo) {
	if len(rows) <= size {
		return rows, PageInfo{}
	}

	rows = rows[:size]
	return rows, PageInfo{
		HasMore:       true,
		NextPageToken: cursorOf(rows[len(rows)-1]),
	}
}

package pagination

import (
	"net/url"
	"strconv"
)

// Request is a DataTables window request: Draw echoes the client's counter,
// Start is the row offset and Length the maximum number of rows.
type Request struct {
	Draw   int `json:"draw"`
	Start  int `json:"start"`
	Length int `json:"length"`
}

// Normalize clamps the window to valid values based on the config.
func (r *Request) Normalize(cfg Config) {
	if r.Draw < 0 {
		r.Draw = 0
	}
	if r.Start < 0 {
		r.Start = 0
	}
	if r.Length < 1 {
		r.Length = cfg.DefaultPageSize
	}
	if r.Length > cfg.MaxPageSize {
		r.Length = cfg.MaxPageSize
	}
}

// RequestFromValues parses draw, start and length from form or query values.
func RequestFromValues(values url.Values, cfg Config) Request {
	draw, _ := strconv.Atoi(values.Get("draw"))
	start, _ := strconv.Atoi(values.Get("start"))
	length, _ := strconv.Atoi(values.Get("length"))

	req := Request{
		Draw:   draw,
		Start:  start,
		Length: length,
	}

	req.Normalize(cfg)
	return req
}

// Result is a window of rows with the total count, in the shape DataTables expects.
type Result[T any] struct {
	Draw                int `json:"draw"`
	TotalRecords        int `json:"iTotalRecords"`
	TotalDisplayRecords int `json:"iTotalDisplayRecords"`
	Data                []T `json:"aaData"`
}

// NewResult creates a Result. Filtered and unfiltered totals are the same count,
// since filters are applied before counting.
func NewResult[T any](req Request, data []T, total int) Result[T] {
	if data == nil {
		data = []T{}
	}

	return Result[T]{
		Draw:                req.Draw,
		TotalRecords:        total,
		TotalDisplayRecords: total,
		Data:                data,
	}
}

// Map converts every row of a Result, keeping its counters.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	out := make([]U, len(r.Data))
	for i, item := range r.Data {
		out[i] = fn(item)
	}
	return Result[U]{
		Draw:                r.Draw,
		TotalRecords:        r.TotalRecords,
		TotalDisplayRecords: r.TotalDisplayRecords,
		Data:                out,
	}
}

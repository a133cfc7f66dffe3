package archive

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"asset_borrow_tracker/models"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Source interface {
	ReturnedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.BorrowRequest, error)
	DeleteBorrowRequests(ctx context.Context, ids []string) (int64, error)
}

// Record 归档文件里的一行
type Record struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	ItemID     string     `json:"itemId"`
	Status     string     `json:"status"`
	BorrowDate time.Time  `json:"borrowDate"`
	ReturnDate *time.Time `json:"returnDate"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type Result struct {
	File     string `json:"file,omitempty"`
	Archived int64  `json:"archived"`
}

type Archiver struct {
	src   Source
	dir   string
	after time.Duration
	batch int
	now   func() time.Time
}

type Option func(*Archiver)

func WithBatchSize(n int) Option { return func(a *Archiver) { a.batch = n } }

func WithNow(f func() time.Time) Option { return func(a *Archiver) { a.now = f } }

func New(src Source, dir string, after time.Duration, opts ...Option) *Archiver {
	a := &Archiver{src: src, dir: dir, after: after, batch: 500, now: time.Now}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Run 按批处理：先写文件并 Sync，再删库里的行；中途崩溃最多重复写，不会丢
func (a *Archiver) Run(ctx context.Context) (Result, error) {
	now := a.now().UTC()
	cutoff := now.Add(-a.after)
	path := filepath.Join(a.dir, fmt.Sprintf("borrow-archive-%s.jsonl", now.Format(time.DateOnly)))

	var (
		res Result
		f   *os.File
	)
	defer func() {
		if f != nil {
			_ = f.Close()
		}
	}()

	for {
		rows, err := a.src.ReturnedBefore(ctx, cutoff, a.batch)
		if err != nil {
			return res, fmt.Errorf("load archivable requests: %w", err)
		}
		if len(rows) == 0 {
			break
		}
		if f == nil {
			if err := os.MkdirAll(a.dir, 0o755); err != nil {
				return res, fmt.Errorf("create archive dir: %w", err)
			}
			if f, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err != nil {
				return res, fmt.Errorf("open archive file: %w", err)
			}
			res.File = path
		}
		if err := writeBatch(f, rows); err != nil {
			return res, err
		}

		ids := make([]string, len(rows))
		for i, r := range rows {
			ids[i] = r.ID
		}
		n, err := a.src.DeleteBorrowRequests(ctx, ids)
		if err != nil {
			return res, fmt.Errorf("delete archived requests: %w", err)
		}
		res.Archived += n
		if len(rows) < a.batch {
			break
		}
	}

	if res.Archived == 0 {
		slog.InfoContext(ctx, "no old borrow requests to archive")
	} else {
		slog.InfoContext(ctx, "archived borrow requests", "count", res.Archived, "file", res.File)
	}
	return res, nil
}

func writeBatch(f *os.File, rows []models.BorrowRequest) error {
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, r := range rows {
		if err := enc.Encode(Record{
			ID:         r.ID,
			UserID:     r.UserID,
			ItemID:     r.ItemID,
			Status:     string(r.Status),
			BorrowDate: r.BorrowDate,
			ReturnDate: r.ReturnDate,
			CreatedAt:  r.CreatedAt,
			UpdatedAt:  r.UpdatedAt,
		}); err != nil {
			return fmt.Errorf("encode archive record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write archive file: %w", err)
	}
	return f.Sync()
}

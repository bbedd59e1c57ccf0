package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/frahmantamala/uniform-manager/internal"
	"github.com/frahmantamala/uniform-manager/internal/role"
	"github.com/frahmantamala/uniform-manager/internal/staff"
	"github.com/frahmantamala/uniform-manager/internal/stock"
	"github.com/shopspring/decimal"
)

type UniformStore interface {
	Create(ctx context.Context, item *stock.UniformItem) error
}

type StaffStore interface {
	Create(ctx context.Context, s *staff.Staff) error
}

type RoleStore interface {
	GetOrCreateByName(ctx context.Context, name string) (*role.Role, error)
}

type Service struct {
	uniforms UniformStore
	members  StaffStore
	roles    RoleStore
	logger   *slog.Logger
}

func NewService(uniforms UniformStore, members StaffStore, roles RoleStore, logger *slog.Logger) *Service {
	return &Service{
		uniforms: uniforms,
		members:  members,
		roles:    roles,
		logger:   logger,
	}
}

var errEmptyCSV = internal.NewValidationError("CSV content is empty", internal.ErrCodeValidationFailed)

// readRows parses the whole document. A malformed document fails as a whole
// before any row is written.
func readRows(r io.Reader) ([]row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, internal.NewValidationError("malformed CSV", internal.ErrCodeValidationFailed).
			WithDetails(map[string]interface{}{"error": err.Error()})
	}
	if len(records) == 0 {
		return nil, errEmptyCSV
	}

	idx := headerIndex(records[0])
	rows := make([]row, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		rows = append(rows, row{index: idx, values: rec})
	}
	return rows, nil
}

// ImportUniforms inserts uniform items from a Name,EAN,Qty document.
func (s *Service) ImportUniforms(ctx context.Context, r io.Reader) (*Result, error) {
	rows, err := readRows(r)
	if err != nil {
		s.logger.Warn("uniform csv rejected", "error", err)
		return nil, err
	}

	res := newResult()
	for i, rw := range rows {
		rowNumber := i + 2
		fullName := rw.get(ColumnName)
		ean := rw.get(ColumnEAN)
		if fullName == "" || ean == "" {
			res.fail(fmt.Sprintf("Row %d: Missing Name or EAN", rowNumber))
			continue
		}

		qty, err := parseQty(rw.get(ColumnQty))
		if err != nil {
			res.fail(fmt.Sprintf("Row %d (EAN: %s): %s", rowNumber, ean, err))
			continue
		}

		name, size := ParseNameAndSize(fullName)
		item := &stock.UniformItem{
			Name:        name,
			Size:        size,
			EAN:         ean,
			StockOnHand: qty,
		}
		if err := s.uniforms.Create(ctx, item); err != nil {
			res.fail(fmt.Sprintf("Row %d (EAN: %s): %s", rowNumber, ean, err))
			continue
		}
		res.Success++
	}

	s.logger.Info("uniform csv imported", "success", res.Success, "failed", res.Failed)
	return res, nil
}

// ImportStaff inserts staff from a "Display Name",Role,Store document,
// creating roles by lower-cased name on first sight.
func (s *Service) ImportStaff(ctx context.Context, r io.Reader) (*Result, error) {
	rows, err := readRows(r)
	if err != nil {
		s.logger.Warn("staff csv rejected", "error", err)
		return nil, err
	}

	res := newResult()
	for i, rw := range rows {
		rowNumber := i + 2
		name := rw.get(ColumnStaff)
		roleName := rw.get(ColumnRole)
		store := rw.get(ColumnStore)
		if name == "" || roleName == "" || store == "" {
			res.fail(fmt.Sprintf("Row %d: Missing required field(s) - Display Name, Role, or Store", rowNumber))
			continue
		}

		ro, err := s.roles.GetOrCreateByName(ctx, roleName)
		if err != nil {
			res.fail(fmt.Sprintf("Row %d: %s", rowNumber, err))
			continue
		}

		member := &staff.Staff{Name: name, RoleID: ro.ID, Store: store}
		if err := s.members.Create(ctx, member); err != nil {
			res.fail(fmt.Sprintf("Row %d (%s): %s", rowNumber, name, err))
			continue
		}
		res.Success++
	}

	s.logger.Info("staff csv imported", "success", res.Success, "failed", res.Failed)
	return res, nil
}

var errInvalidQty = errors.New("Qty must be a non-negative integer")

// parseQty treats unreadable values as zero stock.
func parseQty(raw string) (int64, error) {
	qty, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, nil
	}
	if qty.IsNegative() || !qty.IsInteger() {
		return 0, errInvalidQty
	}
	return qty.IntPart(), nil
}

package vlan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nipaputil/internal/ipamerr"
	"nipaputil/internal/logs"
	"nipaputil/internal/models"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Store: таблица psb_vlan в БД NIPAP, напрямую через SQL, мимо XML-RPC.
// Соединения берутся из пула *gorm.DB на время каждой операции.
type Store struct{ db *gorm.DB }

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

type rowCountError struct{ n int64 }

func (e rowCountError) Error() string {
	return fmt.Sprintf("expected exactly 1 row affected, got %d", e.n)
}

var errNoRows = errors.New("no matching vlan row")

// validKey: ключ (vlanid, porttype) одинаков для всех операций. Диапазон
// vlanid не ограничивается, строки в psb_vlan могут писать и другие системы.
func validKey(op string, vlanID int, portType string) error {
	if vlanID <= 0 {
		return ipamerr.Errorf(op, ipamerr.KindInput, "vlan id must be positive, got %d", vlanID)
	}
	if strings.TrimSpace(portType) == "" {
		return ipamerr.Errorf(op, ipamerr.KindInput, "port type required")
	}
	return nil
}

func (s *Store) ready(op string) error {
	if s == nil || s.db == nil {
		return ipamerr.Errorf(op, ipamerr.KindStore, "database not configured")
	}
	return nil
}

// Insert добавляет одну строку; затронута должна быть ровно одна строка, иначе откат.
// Повтор пары (vlanid, porttype): ошибка KindDuplicate.
func (s *Store) Insert(ctx context.Context, rec models.VlanRecord) error {
	const op = "insert_vlan"
	if err := s.ready(op); err != nil {
		return err
	}
	if err := validKey(op, rec.VlanID, rec.PortType); err != nil {
		return err
	}
	fields := logrus.Fields{"vlanid": rec.VlanID, "porttype": rec.PortType, "siteid": rec.SiteID}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Create(&rec)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return rowCountError{res.RowsAffected}
		}
		return nil
	})
	if err != nil {
		return s.fail(op, err, fields)
	}
	logs.WithOp(op).WithFields(fields).Debug("vlan inserted")
	return nil
}

// QueryByIDPort: строки с данной парой (vlanid, porttype). Нет строк: пустой срез, не ошибка.
func (s *Store) QueryByIDPort(ctx context.Context, vlanID int, portType string) ([]models.VlanRecord, error) {
	const op = "query_vlan"
	if err := s.ready(op); err != nil {
		return nil, err
	}
	if err := validKey(op, vlanID, portType); err != nil {
		return nil, err
	}
	out := []models.VlanRecord{}
	err := s.db.WithContext(ctx).
		Where("vlanid = ? AND porttype = ?", vlanID, portType).
		Find(&out).Error
	if err != nil {
		return nil, s.fail(op, err, logrus.Fields{"vlanid": vlanID, "porttype": portType})
	}
	return out, nil
}

// Delete удаляет строку по (vlanid, porttype); затронута должна быть ровно одна строка.
func (s *Store) Delete(ctx context.Context, vlanID int, portType string) error {
	const op = "delete_vlan"
	if err := s.ready(op); err != nil {
		return err
	}
	if err := validKey(op, vlanID, portType); err != nil {
		return err
	}
	fields := logrus.Fields{"vlanid": vlanID, "porttype": portType}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("vlanid = ? AND porttype = ?", vlanID, portType).Delete(&models.VlanRecord{})
		switch {
		case res.Error != nil:
			return res.Error
		case res.RowsAffected == 0:
			return errNoRows
		case res.RowsAffected != 1:
			return rowCountError{res.RowsAffected}
		}
		return nil
	})
	if err != nil {
		return s.fail(op, err, fields)
	}
	logs.WithOp(op).WithFields(fields).Debug("vlan deleted")
	return nil
}

func (s *Store) fail(op string, err error, fields logrus.Fields) error {
	kind := ipamerr.KindStore
	var rc rowCountError
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		kind = ipamerr.KindDuplicate
	case errors.Is(err, errNoRows):
		kind = ipamerr.KindNotFound
	case errors.As(err, &rc):
		kind = ipamerr.KindConsistency
	}
	logs.WithOp(op).WithFields(fields).WithError(err).Error("vlan store operation failed")
	return ipamerr.E(op, kind, pkgerrors.Wrapf(err, "psb_vlan %v/%v", fields["vlanid"], fields["porttype"]))
}

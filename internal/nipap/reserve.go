package nipap

import (
	"errors"

	"nipaputil/internal/ipamerr"
	"nipaputil/internal/logs"
	"nipaputil/internal/models"

	"github.com/sirupsen/logrus"
)

// FindAndReservePrefix находит свободный префикс внутри fromPrefix и резервирует именно его.
//
// Поиск и сохранение не атомарны: два вызова могут получить один и тот же
// свободный префикс. Решает проверка дубликатов на сервере NIPAP; проигравший
// получает ошибку вида KindDuplicate, состояние на сервере не меняется.
func (c *Client) FindAndReservePrefix(vrfRT, fromPrefix string, prefixLength int, typ models.PrefixType, description string, status models.PrefixStatus) (*models.Prefix, error) {
	const op = "find_and_reserve_prefix"
	fields := logrus.Fields{"rt": vrfRT, "from": fromPrefix, "length": prefixLength}

	free, err := c.FindFreePrefix(vrfRT, fromPrefix, prefixLength)
	if err != nil {
		return nil, err
	}
	if err := within(fromPrefix, free); err != nil {
		logs.WithOp(op).WithFields(fields).WithError(err).Error("nipap returned prefix outside parent")
		return nil, ipamerr.E(op, ipamerr.KindRemote, err)
	}

	spec := PrefixSpec{
		Prefix:      free,
		Type:        typ,
		Status:      status,
		Description: description,
	}
	if err := spec.validate(op); err != nil {
		return nil, err
	}
	v, err := c.FindVRF("rt", vrfRT)
	if err != nil {
		return nil, err
	}
	p, err := c.savePrefix(op, v, spec)
	if err != nil {
		if errors.Is(err, ipamerr.ErrDuplicate) {
			logs.WithOp(op).WithFields(fields).Warnf("prefix %s taken between find and reserve", free)
		}
		return nil, err
	}
	logs.WithOp(op).WithFields(fields).Infof("reserved %s", p.Prefix)
	return p, nil
}

// ReserveParentPrefix добавляет родительскую сеть (обычно /24) в VRF.
// Повторный вызов для существующей сети возвращает уже сохранённый префикс.
func (c *Client) ReserveParentPrefix(site, rt, prefix string, typ models.PrefixType, status models.PrefixStatus, description string, tags []string) (*models.Prefix, error) {
	log := logs.WithOp("reserve_parent_prefix").WithFields(logrus.Fields{"site": site, "rt": rt, "prefix": prefix})
	log.Debug("enter")

	p, err := c.AddPrefixToVRF(rt, PrefixSpec{
		Prefix:      prefix,
		Type:        typ,
		Status:      status,
		Description: description,
		Tags:        tags,
	})
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ipamerr.ErrDuplicate) {
		return nil, err
	}
	log.Debug("prefix already present, returning existing")
	return c.FindPrefix(rt, prefix)
}

// ReserveAddress гарантирует наличие родительской сети parent в VRF rt и
// резервирует в ней следующий свободный префикс длины length.
func (c *Client) ReserveAddress(site, rt, parent string, length int, typ models.PrefixType, status models.PrefixStatus, description string, tags []string) (*models.Prefix, error) {
	logs.WithOp("reserve_address").WithFields(logrus.Fields{
		"site": site, "rt": rt, "prefix": parent, "length": length, "type": typ, "status": status,
	}).Debug("enter")

	if _, err := c.ReserveParentPrefix(site, rt, parent, models.PrefixReservation, models.StatusReserved, description, tags); err != nil {
		return nil, err
	}
	return c.FindAndReservePrefix(rt, parent, length, typ, description, status)
}

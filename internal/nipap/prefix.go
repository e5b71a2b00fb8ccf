package nipap

import (
	"fmt"
	"net"

	"nipaputil/internal/ipamerr"
	"nipaputil/internal/logs"
	"nipaputil/internal/models"

	"github.com/apparentlymart/go-cidr/cidr"
	"github.com/sirupsen/logrus"
)

// PrefixSpec: атрибуты нового префикса.
type PrefixSpec struct {
	Prefix      string
	Type        models.PrefixType
	Status      models.PrefixStatus
	Description string
	Tags        []string
}

type searchPrefixResult struct {
	Result []models.Prefix `mapstructure:"result"`
}

func (s PrefixSpec) validate(op string) error {
	if _, _, err := net.ParseCIDR(s.Prefix); err != nil {
		return ipamerr.E(op, ipamerr.KindInput, err)
	}
	if !s.Type.Valid() {
		return ipamerr.Errorf(op, ipamerr.KindInput, "invalid prefix type %q", s.Type)
	}
	if !s.Status.Valid() {
		return ipamerr.Errorf(op, ipamerr.KindInput, "invalid prefix status %q", s.Status)
	}
	return nil
}

// FindPrefix ищет префикс по CIDR и оставляет первый, чей VRF имеет route target rt.
// Поиск на сервере не ограничен VRF, поэтому фильтр делается здесь.
func (c *Client) FindPrefix(rt, prefix string) (*models.Prefix, error) {
	const op = "find_prefix"
	reply, err := c.call(op, "search_prefix", map[string]interface{}{
		"query":          equalsQuery("prefix", prefix),
		"search_options": map[string]interface{}{},
	}, logrus.Fields{"rt": rt, "prefix": prefix})
	if err != nil {
		return nil, err
	}
	var res searchPrefixResult
	if err := c.decodeReply(op, reply, &res); err != nil {
		return nil, err
	}
	if len(res.Result) == 0 {
		return nil, ipamerr.Errorf(op, ipamerr.KindNotFound, "no prefix %s", prefix)
	}
	for i := range res.Result {
		if res.Result[i].VRFRT == rt {
			return &res.Result[i], nil
		}
	}
	return nil, ipamerr.Errorf(op, ipamerr.KindNotFound, "prefix %s not in vrf %s", prefix, rt)
}

// FindFreePrefix возвращает следующий свободный префикс длины prefixLength внутри
// fromPrefix в VRF rt. Ничего не резервирует: результат только подсказка.
func (c *Client) FindFreePrefix(rt, fromPrefix string, prefixLength int) (string, error) {
	const op = "find_free_prefix"
	fields := logrus.Fields{"rt": rt, "from": fromPrefix, "length": prefixLength}

	_, parent, err := net.ParseCIDR(fromPrefix)
	if err != nil {
		return "", ipamerr.E(op, ipamerr.KindInput, err)
	}
	ones, bits := parent.Mask.Size()
	if prefixLength < ones || prefixLength > bits {
		return "", ipamerr.Errorf(op, ipamerr.KindInput, "prefix length %d outside %d..%d", prefixLength, ones, bits)
	}

	v, err := c.FindVRF("rt", rt)
	if err != nil {
		return "", err
	}

	reply, err := c.call(op, "find_free_prefix", map[string]interface{}{
		"vrf": map[string]interface{}{"id": v.ID},
		"args": map[string]interface{}{
			"from-prefix":   []interface{}{fromPrefix},
			"prefix_length": prefixLength,
		},
	}, fields)
	if err != nil {
		return "", err
	}
	var free []string
	if err := c.decodeReply(op, reply, &free); err != nil {
		return "", err
	}
	if len(free) == 0 {
		logs.WithOp(op).WithFields(fields).Debug("no free prefix")
		return "", ipamerr.Errorf(op, ipamerr.KindNotFound, "no /%d available in %s for rt %s", prefixLength, fromPrefix, rt)
	}
	return free[0], nil
}

// AddPrefixToVRF сохраняет префикс в VRF с route target vrfRT.
// В отличие от "вернуть несохранённый объект", любая ошибка сохранения возвращается.
func (c *Client) AddPrefixToVRF(vrfRT string, spec PrefixSpec) (*models.Prefix, error) {
	const op = "add_prefix_to_vrf"
	if err := spec.validate(op); err != nil {
		return nil, err
	}
	v, err := c.FindVRF("rt", vrfRT)
	if err != nil {
		return nil, err
	}
	return c.savePrefix(op, v, spec)
}

func (c *Client) savePrefix(op string, v *models.VRF, spec PrefixSpec) (*models.Prefix, error) {
	fields := logrus.Fields{"rt": v.RT, "prefix": spec.Prefix}
	reply, err := c.call(op, "add_prefix", map[string]interface{}{
		"attr": map[string]interface{}{
			"prefix":      spec.Prefix,
			"type":        string(spec.Type),
			"status":      string(spec.Status),
			"description": spec.Description,
			"vrf_id":      v.ID,
			"tags":        tagList(spec.Tags),
		},
		"args": map[string]interface{}{},
	}, fields)
	if err != nil {
		return nil, err
	}
	var p models.Prefix
	if err := c.decodeReply(op, reply, &p); err != nil {
		return nil, err
	}
	logs.WithOp(op).WithFields(fields).Debugf("prefix %d saved", p.ID)
	return &p, nil
}

// AddPrefixFromPool выделяет префикс из пула; тип берётся из пула, статус assigned.
func (c *Client) AddPrefixFromPool(pool *models.Pool, family int, description string) (*models.Prefix, error) {
	const op = "add_prefix_from_pool"
	if pool == nil || pool.ID == 0 {
		return nil, ipamerr.Errorf(op, ipamerr.KindInput, "pool required")
	}
	if family != 4 && family != 6 {
		return nil, ipamerr.Errorf(op, ipamerr.KindInput, "invalid address family %d", family)
	}
	fields := logrus.Fields{"pool": pool.Name, "family": family}
	reply, err := c.call(op, "add_prefix", map[string]interface{}{
		"attr": map[string]interface{}{
			"type":        string(pool.DefaultType),
			"status":      string(models.StatusAssigned),
			"description": description,
		},
		"args": map[string]interface{}{
			"from-pool": map[string]interface{}{"id": pool.ID},
			"family":    family,
		},
	}, fields)
	if err != nil {
		return nil, err
	}
	var p models.Prefix
	if err := c.decodeReply(op, reply, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPrefixes: все префиксы. Фильтр по имени не поддерживается.
func (c *Client) GetPrefixes(name string) ([]models.Prefix, error) {
	const op = "get_prefixes"
	if name != "" {
		return nil, ipamerr.Errorf(op, ipamerr.KindUnsupported, "filtering prefixes by name %q is not supported", name)
	}
	reply, err := c.call(op, "list_prefix", map[string]interface{}{
		"prefix": map[string]interface{}{},
	}, nil)
	if err != nil {
		return nil, err
	}
	out := []models.Prefix{}
	if err := c.decodeReply(op, reply, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeletePrefix не реализовано: префиксы этим слоем не удаляются.
func (c *Client) DeletePrefix(rt, prefix string) error {
	return ipamerr.Errorf("delete_prefix", ipamerr.KindUnsupported, "deleting prefix %s in %s is not supported", prefix, rt)
}

// within проверяет, что child целиком лежит в parent.
func within(parent, child string) error {
	_, pn, err := net.ParseCIDR(parent)
	if err != nil {
		return err
	}
	_, cn, err := net.ParseCIDR(child)
	if err != nil {
		return err
	}
	first, last := cidr.AddressRange(cn)
	if !pn.Contains(first) || !pn.Contains(last) {
		return fmt.Errorf("%s is outside %s", child, parent)
	}
	return nil
}

package nipap

import (
	"nipaputil/internal/ipamerr"
	"nipaputil/internal/logs"
	"nipaputil/internal/models"

	"github.com/sirupsen/logrus"
)

type searchVRFResult struct {
	Result []models.VRF `mapstructure:"result"`
}

func equalsQuery(property, value interface{}) map[string]interface{} {
	return map[string]interface{}{
		"operator": "equals",
		"val1":     property,
		"val2":     value,
	}
}

func tagList(tags []string) []interface{} {
	out := make([]interface{}, 0, len(tags))
	for _, t := range tags {
		out = append(out, t)
	}
	return out
}

// AddVRF создаёт VRF с route target rt (вида "209:123").
func (c *Client) AddVRF(name, rt, description string, tags []string) (*models.VRF, error) {
	const op = "add_vrf"
	fields := logrus.Fields{"rt": rt, "name": name}
	if rt == "" && name == "" {
		return nil, ipamerr.Errorf(op, ipamerr.KindInput, "rt or name required")
	}

	reply, err := c.call(op, "add_vrf", map[string]interface{}{
		"attr": map[string]interface{}{
			"rt":          rt,
			"name":        name,
			"description": description,
			"tags":        tagList(tags),
		},
	}, fields)
	if err != nil {
		return nil, err
	}
	var v models.VRF
	if err := c.decodeReply(op, reply, &v); err != nil {
		return nil, err
	}
	logs.WithOp(op).WithFields(fields).Debugf("vrf %d created", v.ID)
	return &v, nil
}

// FindVRF: точное совпадение по одному свойству (rt, name, description...).
// Ноль совпадений: KindNotFound, а не сбой.
func (c *Client) FindVRF(property, value string) (*models.VRF, error) {
	const op = "find_vrf"
	reply, err := c.call(op, "search_vrf", map[string]interface{}{
		"query":          equalsQuery(property, value),
		"search_options": map[string]interface{}{},
	}, logrus.Fields{property: value})
	if err != nil {
		return nil, err
	}
	var res searchVRFResult
	if err := c.decodeReply(op, reply, &res); err != nil {
		return nil, err
	}
	if len(res.Result) == 0 {
		return nil, ipamerr.Errorf(op, ipamerr.KindNotFound, "no vrf with %s=%q", property, value)
	}
	return &res.Result[0], nil
}

// SearchVRF: "умный" поиск: "209:123" найдёт и 209:123, и 209:1234.
func (c *Client) SearchVRF(rt string) ([]models.VRF, error) {
	const op = "search_vrf"
	reply, err := c.call(op, "smart_search_vrf", map[string]interface{}{
		"query_string":   rt,
		"search_options": map[string]interface{}{},
	}, logrus.Fields{"rt": rt})
	if err != nil {
		return nil, err
	}
	var res searchVRFResult
	if err := c.decodeReply(op, reply, &res); err != nil {
		return nil, err
	}
	if res.Result == nil {
		res.Result = []models.VRF{}
	}
	return res.Result, nil
}

// ListVRFs: все VRF, либо только с указанным именем.
func (c *Client) ListVRFs(name string) ([]models.VRF, error) {
	const op = "list_vrf"
	spec := map[string]interface{}{}
	if name != "" {
		spec["name"] = name
	}
	reply, err := c.call(op, "list_vrf", map[string]interface{}{"vrf": spec}, logrus.Fields{"name": name})
	if err != nil {
		return nil, err
	}
	out := []models.VRF{}
	if err := c.decodeReply(op, reply, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteVRF удаляет VRF по rt (приоритетно) или по имени и возвращает удалённую запись.
// Сервер отказывает, если в VRF ещё есть префиксы; эта ошибка пробрасывается.
func (c *Client) DeleteVRF(rt, name string) (*models.VRF, error) {
	const op = "delete_vrf"

	var (
		v   *models.VRF
		err error
	)
	switch {
	case rt != "":
		v, err = c.FindVRF("rt", rt)
	case name != "":
		v, err = c.FindVRF("name", name)
	default:
		return nil, ipamerr.Errorf(op, ipamerr.KindInput, "rt or name required")
	}
	if err != nil {
		return nil, err
	}

	fields := logrus.Fields{"rt": v.RT, "name": v.Name}
	if _, err := c.call(op, "remove_vrf", map[string]interface{}{
		"vrf": map[string]interface{}{"id": v.ID},
	}, fields); err != nil {
		return nil, err
	}
	logs.WithOp(op).WithFields(fields).Info("vrf removed")
	return v, nil
}

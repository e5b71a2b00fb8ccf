package nipap

import (
	"nipaputil/internal/ipamerr"
	"nipaputil/internal/logs"
	"nipaputil/internal/models"

	"github.com/sirupsen/logrus"
)

func (c *Client) AddPool(name, description string, defaultType models.PrefixType, ipv4DefaultPrefixLength int) (*models.Pool, error) {
	const op = "add_pool"
	if name == "" {
		return nil, ipamerr.Errorf(op, ipamerr.KindInput, "pool name required")
	}
	if !defaultType.Valid() {
		return nil, ipamerr.Errorf(op, ipamerr.KindInput, "invalid default type %q", defaultType)
	}
	if ipv4DefaultPrefixLength < 0 || ipv4DefaultPrefixLength > 32 {
		return nil, ipamerr.Errorf(op, ipamerr.KindInput, "invalid ipv4 prefix length %d", ipv4DefaultPrefixLength)
	}

	fields := logrus.Fields{"pool": name}
	reply, err := c.call(op, "add_pool", map[string]interface{}{
		"attr": map[string]interface{}{
			"name":                       name,
			"description":                description,
			"default_type":               string(defaultType),
			"ipv4_default_prefix_length": ipv4DefaultPrefixLength,
		},
	}, fields)
	if err != nil {
		return nil, err
	}
	var p models.Pool
	if err := c.decodeReply(op, reply, &p); err != nil {
		return nil, err
	}
	logs.WithOp(op).WithFields(fields).Debugf("pool %d created", p.ID)
	return &p, nil
}

// GetPools: все пулы, либо с указанным именем.
func (c *Client) GetPools(name string) ([]models.Pool, error) {
	const op = "get_pools"
	spec := map[string]interface{}{}
	if name != "" {
		spec["name"] = name
	}
	reply, err := c.call(op, "list_pool", map[string]interface{}{"pool": spec}, logrus.Fields{"pool": name})
	if err != nil {
		return nil, err
	}
	out := []models.Pool{}
	if err := c.decodeReply(op, reply, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeletePool(name string) error {
	const op = "delete_pool"
	if name == "" {
		return ipamerr.Errorf(op, ipamerr.KindInput, "pool name required")
	}
	pools, err := c.GetPools(name)
	if err != nil {
		return err
	}
	if len(pools) == 0 {
		return ipamerr.Errorf(op, ipamerr.KindNotFound, "no pool %q", name)
	}
	for _, p := range pools {
		if _, err := c.call(op, "remove_pool", map[string]interface{}{
			"pool": map[string]interface{}{"id": p.ID},
		}, logrus.Fields{"pool": name}); err != nil {
			return err
		}
	}
	return nil
}

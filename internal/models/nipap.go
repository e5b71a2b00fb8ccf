package models

// Объекты NIPAP. Владелец: удалённый сервер; клиент держит только копию
// на время вызова. Поля декодируются из XML-RPC структур по тегам mapstructure.

type PrefixType string

const (
	PrefixReservation PrefixType = "reservation"
	PrefixAssignment  PrefixType = "assignment"
	PrefixHost        PrefixType = "host"
)

func (t PrefixType) Valid() bool {
	switch t {
	case PrefixReservation, PrefixAssignment, PrefixHost:
		return true
	}
	return false
}

type PrefixStatus string

const (
	StatusAssigned PrefixStatus = "assigned"
	StatusReserved PrefixStatus = "reserved"
)

func (s PrefixStatus) Valid() bool {
	return s == StatusAssigned || s == StatusReserved
}

type VRF struct {
	ID          int      `mapstructure:"id" json:"id"`
	RT          string   `mapstructure:"rt" json:"rt"`
	Name        string   `mapstructure:"name" json:"name"`
	Description string   `mapstructure:"description" json:"description"`
	Tags        []string `mapstructure:"tags" json:"tags,omitempty"`
}

type Prefix struct {
	ID          int          `mapstructure:"id" json:"id"`
	Prefix      string       `mapstructure:"prefix" json:"prefix"`
	Family      int          `mapstructure:"family" json:"family,omitempty"`
	Type        PrefixType   `mapstructure:"type" json:"type"`
	Status      PrefixStatus `mapstructure:"status" json:"status"`
	Description string       `mapstructure:"description" json:"description"`
	VRFID       int          `mapstructure:"vrf_id" json:"vrf_id"`
	VRFRT       string       `mapstructure:"vrf_rt" json:"vrf_rt"`
	VRFName     string       `mapstructure:"vrf_name" json:"vrf_name"`
	PoolID      int          `mapstructure:"pool_id" json:"pool_id,omitempty"`
	Tags        []string     `mapstructure:"tags" json:"tags,omitempty"`
}

type Pool struct {
	ID                      int        `mapstructure:"id" json:"id"`
	Name                    string     `mapstructure:"name" json:"name"`
	Description             string     `mapstructure:"description" json:"description"`
	DefaultType             PrefixType `mapstructure:"default_type" json:"default_type"`
	IPv4DefaultPrefixLength int        `mapstructure:"ipv4_default_prefix_length" json:"ipv4_default_prefix_length,omitempty"`
	IPv6DefaultPrefixLength int        `mapstructure:"ipv6_default_prefix_length" json:"ipv6_default_prefix_length,omitempty"`
	Tags                    []string   `mapstructure:"tags" json:"tags,omitempty"`
}

// Package nipaptest: XML-RPC сервер NIPAP в памяти для тестов.
// Server реализует nipap.Caller и повторяет поведение сервера в той мере,
// в какой на него опирается клиент: дубликаты, VRF с префиксами, поиск свободного места.
package nipaptest

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/apparentlymart/go-cidr/cidr"
	"github.com/kolo/xmlrpc"
)

const Version = "0.31.2"

type record = map[string]interface{}

type Server struct {
	mu       sync.Mutex
	nextID   int64
	poolSeq  int
	vrfs     []record
	prefixes []record
	pools    []record

	// StaleFree, если задан, отдаётся find_free_prefix вместо расчёта
	// (имитация гонки между поиском и резервированием).
	StaleFree []string
	// Fail: ошибка, которую вернёт указанный метод.
	Fail map[string]error
	// Sources: authoritative_source каждого вызова.
	Sources []string
	Calls   []string
}

func New() *Server {
	return &Server{Fail: map[string]error{}}
}

func Fault(code int, format string, args ...interface{}) error {
	return xmlrpc.FaultError{Code: code, String: fmt.Sprintf(format, args...)}
}

func (s *Server) Call(method string, args interface{}, reply interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Calls = append(s.Calls, method)
	a, _ := args.(map[string]interface{})
	if auth, ok := a["auth"].(map[string]interface{}); ok {
		s.Sources = append(s.Sources, str(auth["authoritative_source"]))
	}
	if err := s.Fail[method]; err != nil {
		return err
	}

	var (
		out interface{}
		err error
	)
	switch method {
	case "version":
		out = Version
	case "add_vrf":
		out, err = s.addVRF(sub(a, "attr"))
	case "search_vrf":
		out = searchResult(filter(s.vrfs, matchQuery(sub(a, "query"))))
	case "smart_search_vrf":
		q := str(a["query_string"])
		out = searchResult(filter(s.vrfs, func(r record) bool {
			return strings.Contains(str(r["rt"]), q) || strings.Contains(str(r["name"]), q) ||
				strings.Contains(str(r["description"]), q)
		}))
	case "list_vrf":
		out = filter(s.vrfs, matchSpec(sub(a, "vrf")))
	case "remove_vrf":
		err = s.removeVRF(toInt(sub(a, "vrf")["id"]))
	case "add_prefix":
		out, err = s.addPrefix(sub(a, "attr"), sub(a, "args"))
	case "search_prefix":
		out = searchResult(filter(s.prefixes, matchQuery(sub(a, "query"))))
	case "list_prefix":
		out = filter(s.prefixes, matchSpec(sub(a, "prefix")))
	case "find_free_prefix":
		out, err = s.findFree(sub(a, "vrf"), sub(a, "args"))
	case "add_pool":
		out, err = s.addPool(sub(a, "attr"))
	case "list_pool":
		out = filter(s.pools, matchSpec(sub(a, "pool")))
	case "remove_pool":
		err = s.removePool(toInt(sub(a, "pool")["id"]))
	default:
		err = Fault(1000, "unknown method %s", method)
	}
	if err != nil {
		return err
	}
	if r, ok := reply.(*interface{}); ok {
		*r = out
	}
	return nil
}

// PrefixCount: сколько раз префикс сохранён в VRF rt.
func (s *Server) PrefixCount(rt, prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.prefixes {
		if str(p["vrf_rt"]) == rt && str(p["prefix"]) == prefix {
			n++
		}
	}
	return n
}

func (s *Server) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Server) addVRF(attr record) (interface{}, error) {
	rt, name := str(attr["rt"]), str(attr["name"])
	for _, v := range s.vrfs {
		if rt != "" && str(v["rt"]) == rt {
			return nil, Fault(1400, "Duplicate value for 'rt', the value '%s' is already in use.", rt)
		}
		if name != "" && str(v["name"]) == name {
			return nil, Fault(1400, "Duplicate value for 'name', the value '%s' is already in use.", name)
		}
	}
	v := record{
		"id":          s.id(),
		"rt":          rt,
		"name":        name,
		"description": str(attr["description"]),
		"tags":        list(attr["tags"]),
	}
	s.vrfs = append(s.vrfs, v)
	return clone(v), nil
}

func (s *Server) removeVRF(id int64) error {
	for i, v := range s.vrfs {
		if toInt(v["id"]) != id {
			continue
		}
		for _, p := range s.prefixes {
			if p["vrf_id"] != nil && toInt(p["vrf_id"]) == id {
				return Fault(1000, "VRF %s still contains prefixes", str(v["rt"]))
			}
		}
		s.vrfs = append(s.vrfs[:i], s.vrfs[i+1:]...)
		return nil
	}
	return Fault(1300, "Non-existent VRF %d", id)
}

func (s *Server) vrfByID(id interface{}) record {
	if id == nil {
		return nil
	}
	for _, v := range s.vrfs {
		if toInt(v["id"]) == toInt(id) {
			return v
		}
	}
	return nil
}

func (s *Server) addPrefix(attr, args record) (interface{}, error) {
	p := record{
		"id":          int64(0),
		"type":        str(attr["type"]),
		"status":      str(attr["status"]),
		"description": str(attr["description"]),
		"tags":        list(attr["tags"]),
		"vrf_id":      nil,
		"vrf_rt":      nil,
		"vrf_name":    nil,
		"pool_id":     nil,
	}

	if from, ok := args["from-pool"].(map[string]interface{}); ok {
		var pool record
		for _, pl := range s.pools {
			if toInt(pl["id"]) == toInt(from["id"]) {
				pool = pl
			}
		}
		if pool == nil {
			return nil, Fault(1300, "Non-existent pool %v", from["id"])
		}
		if toInt(args["family"]) != 4 {
			return nil, Fault(1200, "pool %s has no IPv%d members", str(pool["name"]), toInt(args["family"]))
		}
		s.poolSeq++
		p["prefix"] = fmt.Sprintf("10.200.%d.0/%d", s.poolSeq, toInt(pool["ipv4_default_prefix_length"]))
		p["pool_id"] = pool["id"]
	} else {
		p["prefix"] = str(attr["prefix"])
	}

	ip, _, err := net.ParseCIDR(str(p["prefix"]))
	if err != nil {
		return nil, Fault(1200, "Invalid prefix %s", str(p["prefix"]))
	}
	p["family"] = int64(4)
	if ip.To4() == nil {
		p["family"] = int64(6)
	}

	if v := s.vrfByID(attr["vrf_id"]); v != nil {
		p["vrf_id"], p["vrf_rt"], p["vrf_name"] = v["id"], v["rt"], v["name"]
	} else if attr["vrf_id"] != nil {
		return nil, Fault(1300, "Non-existent VRF %v", attr["vrf_id"])
	}

	for _, e := range s.prefixes {
		if str(e["prefix"]) == str(p["prefix"]) && str(e["vrf_id"]) == str(p["vrf_id"]) {
			return nil, Fault(1400, "Duplicate: prefix %s already exists in VRF", str(p["prefix"]))
		}
	}
	p["id"] = s.id()
	s.prefixes = append(s.prefixes, p)
	return clone(p), nil
}

func (s *Server) findFree(vrf, args record) (interface{}, error) {
	if s.StaleFree != nil {
		return list(s.StaleFree), nil
	}
	from := list(args["from-prefix"])
	if len(from) != 1 {
		return nil, Fault(1100, "from-prefix must contain exactly one prefix")
	}
	_, parent, err := net.ParseCIDR(str(from[0]))
	if err != nil {
		return nil, Fault(1200, "Invalid prefix %v", from[0])
	}
	ones, _ := parent.Mask.Size()
	newbits := int(toInt(args["prefix_length"])) - ones
	if newbits < 0 {
		return nil, Fault(1200, "prefix_length shorter than parent")
	}
	vrfID := str(vrf["id"])

	count := 1 << uint(newbits)
	for i := 0; i < count && i < 1<<16; i++ {
		cand, err := cidr.Subnet(parent, newbits, i)
		if err != nil {
			break
		}
		if !s.taken(vrfID, cand) {
			return []interface{}{cand.String()}, nil
		}
	}
	return []interface{}{}, nil
}

// taken: кандидат занят, если в VRF есть префикс той же длины или длиннее внутри него.
func (s *Server) taken(vrfID string, cand *net.IPNet) bool {
	candOnes, _ := cand.Mask.Size()
	for _, p := range s.prefixes {
		if str(p["vrf_id"]) != vrfID {
			continue
		}
		_, n, err := net.ParseCIDR(str(p["prefix"]))
		if err != nil {
			continue
		}
		ones, _ := n.Mask.Size()
		if ones >= candOnes && cand.Contains(n.IP) {
			return true
		}
	}
	return false
}

func (s *Server) addPool(attr record) (interface{}, error) {
	name := str(attr["name"])
	for _, p := range s.pools {
		if str(p["name"]) == name {
			return nil, Fault(1400, "Duplicate value for 'name', the value '%s' is already in use.", name)
		}
	}
	p := record{
		"id":                         s.id(),
		"name":                       name,
		"description":                str(attr["description"]),
		"default_type":               str(attr["default_type"]),
		"ipv4_default_prefix_length": toInt(attr["ipv4_default_prefix_length"]),
		"ipv6_default_prefix_length": nil,
		"tags":                       []interface{}{},
	}
	s.pools = append(s.pools, p)
	return clone(p), nil
}

func (s *Server) removePool(id int64) error {
	for i, p := range s.pools {
		if toInt(p["id"]) == id {
			s.pools = append(s.pools[:i], s.pools[i+1:]...)
			return nil
		}
	}
	return Fault(1300, "Non-existent pool %d", id)
}

func sub(a record, key string) record {
	if m, ok := a[key].(map[string]interface{}); ok {
		return m
	}
	return record{}
}

func matchQuery(q record) func(record) bool {
	return func(r record) bool {
		if str(q["operator"]) != "equals" {
			return false
		}
		return str(r[str(q["val1"])]) == str(q["val2"])
	}
}

func matchSpec(spec record) func(record) bool {
	return func(r record) bool {
		for k, v := range spec {
			if str(r[k]) != str(v) {
				return false
			}
		}
		return true
	}
}

func filter(in []record, keep func(record) bool) []interface{} {
	out := []interface{}{}
	for _, r := range in {
		if keep(r) {
			out = append(out, clone(r))
		}
	}
	return out
}

func searchResult(res []interface{}) record {
	return record{"result": res, "search_options": record{}}
}

func clone(r record) record {
	c := make(record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

func list(v interface{}) []interface{} {
	switch t := v.(type) {
	case []interface{}:
		return append([]interface{}{}, t...)
	case []string:
		out := make([]interface{}, 0, len(t))
		for _, s := range t {
			out = append(out, s)
		}
		return out
	}
	return []interface{}{}
}

func str(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func toInt(v interface{}) int64 {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int64:
		return t
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	}
	return 0
}

package ocpp

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/xid"
)

// RequestId identifies one in-flight exchange.
type RequestId string

func (id RequestId) String() string {
	return string(id)
}

// NewRequestId returns a random UUID based request id.
func NewRequestId() RequestId {
	return RequestId(uuid.New().String())
}

// RequestIdGenerator produces request ids for outgoing requests.
type RequestIdGenerator interface {
	Next() RequestId
}

type UUIDGenerator struct{}

func (UUIDGenerator) Next() RequestId {
	return NewRequestId()
}

// CounterGenerator issues prefix-1, prefix-2, ... and is safe for concurrent use.
type CounterGenerator struct {
	prefix  string
	counter atomic.Uint64
}

func NewCounterGenerator(prefix string) *CounterGenerator {
	return &CounterGenerator{prefix: prefix}
}

func (g *CounterGenerator) Next() RequestId {
	n := g.counter.Add(1)
	if g.prefix == "" {
		return RequestId(fmt.Sprintf("%d", n))
	}
	return RequestId(fmt.Sprintf("%s-%d", g.prefix, n))
}

// EventTrackingId correlates several exchanges that belong to one event, e.g. retries.
type EventTrackingId string

func (id EventTrackingId) String() string {
	return string(id)
}

func NewEventTrackingId() EventTrackingId {
	return EventTrackingId(xid.New().String())
}

// NodeId identifies a charge box (OCPP 1.6) or a networking node (OCPP 2.1).
type NodeId string

func (id NodeId) String() string {
	return string(id)
}

// NetworkPath records the hops a message traveled, source first. The zero value is an empty path.
type NetworkPath struct {
	nodes []NodeId
}

func NewNetworkPath(nodes ...NodeId) NetworkPath {
	if len(nodes) == 0 {
		return NetworkPath{}
	}
	path := NetworkPath{nodes: make([]NodeId, len(nodes))}
	copy(path.nodes, nodes)
	return path
}

// Append returns a new path with node added as the last hop.
func (p NetworkPath) Append(node NodeId) NetworkPath {
	nodes := make([]NodeId, len(p.nodes), len(p.nodes)+1)
	copy(nodes, p.nodes)
	return NetworkPath{nodes: append(nodes, node)}
}

// Reverse returns the path a reply takes back to the source.
func (p NetworkPath) Reverse() NetworkPath {
	nodes := make([]NodeId, len(p.nodes))
	for i, node := range p.nodes {
		nodes[len(p.nodes)-1-i] = node
	}
	return NetworkPath{nodes: nodes}
}

func (p NetworkPath) Len() int {
	return len(p.nodes)
}

func (p NetworkPath) IsEmpty() bool {
	return len(p.nodes) == 0
}

func (p NetworkPath) Source() (NodeId, bool) {
	if len(p.nodes) == 0 {
		return "", false
	}
	return p.nodes[0], true
}

func (p NetworkPath) Last() (NodeId, bool) {
	if len(p.nodes) == 0 {
		return "", false
	}
	return p.nodes[len(p.nodes)-1], true
}

func (p NetworkPath) Contains(node NodeId) bool {
	for _, n := range p.nodes {
		if n == node {
			return true
		}
	}
	return false
}

func (p NetworkPath) Nodes() []NodeId {
	nodes := make([]NodeId, len(p.nodes))
	copy(nodes, p.nodes)
	return nodes
}

func (p NetworkPath) Strings() []string {
	s := make([]string, len(p.nodes))
	for i, n := range p.nodes {
		s[i] = string(n)
	}
	return s
}

func (p NetworkPath) Equal(other NetworkPath) bool {
	if len(p.nodes) != len(other.nodes) {
		return false
	}
	for i := range p.nodes {
		if p.nodes[i] != other.nodes[i] {
			return false
		}
	}
	return true
}

func (p NetworkPath) String() string {
	return strings.Join(p.Strings(), " -> ")
}

func (p NetworkPath) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Strings())
}

func (p *NetworkPath) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	nodes := make([]NodeId, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("network path contains an empty node id")
		}
		nodes = append(nodes, NodeId(id))
	}
	*p = NetworkPath{nodes: nodes}
	return nil
}

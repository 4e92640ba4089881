// Package registry implements the service discovery layer: ephemeral node
// registration and region-scoped listing against a Zookeeper-style
// coordination service, falling back to an in-memory directory if the
// coordinator is unreachable.
package registry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/go-zookeeper/zk"

	"github.com/meeting-platform/core/internal/domain"
)

const (
	rootPath    = "/meeting"
	serversPath = "/meeting/servers"
)

// Registry registers this process's own endpoint as an ephemeral node and
// lists the endpoints registered by others, scoped by region.
type Registry struct {
	conn   *zk.Conn
	logger *slog.Logger

	mu       sync.RWMutex
	fallback map[string][]domain.Node // used when conn is nil
}

// Connect dials the Zookeeper ensemble at addrs. If the dial fails, it
// returns a Registry operating in in-memory fallback mode instead of an
// error, matching the reference server's degrade-rather-than-crash posture
// when the coordination service is unavailable at startup.
func Connect(addrs []string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{logger: logger, fallback: make(map[string][]domain.Node)}

	if len(addrs) == 0 {
		logger.Warn("registry: no zookeeper addresses configured, using in-memory fallback")
		return r
	}

	conn, _, err := zk.Connect(addrs, 5*time.Second)
	if err != nil {
		logger.Warn("registry: failed to connect to zookeeper, using in-memory fallback", "error", err)
		return r
	}
	if err := ensurePath(conn, rootPath); err != nil {
		logger.Warn("registry: failed to bootstrap root path, using in-memory fallback", "error", err)
		conn.Close()
		return r
	}
	if err := ensurePath(conn, serversPath); err != nil {
		logger.Warn("registry: failed to bootstrap servers path, using in-memory fallback", "error", err)
		conn.Close()
		return r
	}

	r.conn = conn
	return r
}

// Close releases the underlying Zookeeper session, if any.
func (r *Registry) Close() {
	if r.conn != nil {
		r.conn.Close()
	}
}

func ensurePath(conn *zk.Conn, p string) error {
	exists, _, err := conn.Exists(p)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = conn.Create(p, nil, 0, zk.WorldACL(zk.PermAll))
	return err
}

func regionPath(region string) string {
	if region == "" {
		region = domain.DefaultRegion
	}
	return path.Join(serversPath, region)
}

func nodeName(node domain.Node) string {
	return fmt.Sprintf("%s:%d", node.Host, node.Port)
}

// Register creates an ephemeral znode for node under its region, bootstrapping
// the region path if needed. In fallback mode it records node in the
// in-memory directory instead. Registering the same node twice is
// idempotent: an already-exists reply from the coordinator is treated as
// success rather than an error.
func (r *Registry) Register(node domain.Node) error {
	if r.conn == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		key := regionKey(node.Region)
		for _, existing := range r.fallback[key] {
			if existing.Host == node.Host && existing.Port == node.Port {
				return nil
			}
		}
		r.fallback[key] = append(r.fallback[key], node)
		return nil
	}

	regionP := regionPath(node.Region)
	if err := ensurePath(r.conn, regionP); err != nil {
		return fmt.Errorf("bootstrap region path: %w", err)
	}

	payload, err := json.Marshal(node.Meta)
	if err != nil {
		return fmt.Errorf("marshal node metadata: %w", err)
	}

	nodePath := path.Join(regionP, nodeName(node))
	_, err = r.conn.Create(nodePath, payload, zk.FlagEphemeral, zk.WorldACL(zk.PermAll))
	if err != nil && err != zk.ErrNodeExists {
		return fmt.Errorf("register node: %w", err)
	}
	return nil
}

// Unregister removes node's ephemeral znode (or its in-memory fallback
// entry). Unregistering a node that was never registered is a no-op.
func (r *Registry) Unregister(node domain.Node) error {
	if r.conn == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		key := regionKey(node.Region)
		nodes := r.fallback[key]
		for i, existing := range nodes {
			if existing.Host == node.Host && existing.Port == node.Port {
				r.fallback[key] = append(nodes[:i], nodes[i+1:]...)
				break
			}
		}
		return nil
	}

	nodePath := path.Join(regionPath(node.Region), nodeName(node))
	err := r.conn.Delete(nodePath, -1)
	if err != nil && err != zk.ErrNoNode {
		return fmt.Errorf("unregister node: %w", err)
	}
	return nil
}

func regionKey(region string) string {
	if region == "" {
		return domain.DefaultRegion
	}
	return region
}

// List returns the nodes registered under region. An empty result for a
// named region falls back to every node across all regions, so that a
// caller asking for an unpopulated region still gets a usable endpoint list
// rather than none.
func (r *Registry) List(region string) ([]domain.Node, error) {
	if r.conn == nil {
		return r.listFallback(region)
	}

	nodes, err := r.listZK(region)
	if err != nil {
		return nil, err
	}
	if len(nodes) > 0 {
		return nodes, nil
	}
	return r.listAllZK()
}

func (r *Registry) listZK(region string) ([]domain.Node, error) {
	regionP := regionPath(region)
	children, _, err := r.conn.Children(regionP)
	if err != nil {
		if err == zk.ErrNoNode {
			return nil, nil
		}
		return nil, err
	}
	nodes := make([]domain.Node, 0, len(children))
	for _, child := range children {
		node, ok := parseNodeName(child)
		if !ok {
			continue
		}
		node.Region = regionKey(region)
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodeName(nodes[i]) < nodeName(nodes[j]) })
	return nodes, nil
}

func (r *Registry) listAllZK() ([]domain.Node, error) {
	regions, _, err := r.conn.Children(serversPath)
	if err != nil {
		if err == zk.ErrNoNode {
			return nil, nil
		}
		return nil, err
	}
	var all []domain.Node
	for _, region := range regions {
		nodes, err := r.listZK(region)
		if err != nil {
			return nil, err
		}
		all = append(all, nodes...)
	}
	return all, nil
}

func (r *Registry) listFallback(region string) ([]domain.Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if nodes := r.fallback[regionKey(region)]; len(nodes) > 0 {
		return append([]domain.Node(nil), nodes...), nil
	}
	var all []domain.Node
	for _, nodes := range r.fallback {
		all = append(all, nodes...)
	}
	return all, nil
}

func parseNodeName(name string) (domain.Node, bool) {
	host, port, err := splitHostPort(name)
	if err != nil {
		return domain.Node{}, false
	}
	return domain.Node{Host: host, Port: port}, true
}

package registry

import (
	"testing"

	"github.com/meeting-platform/core/internal/domain"
)

func TestConnect_NoAddrs_UsesFallback(t *testing.T) {
	r := Connect(nil, nil)
	defer r.Close()

	if r.conn != nil {
		t.Fatalf("expected fallback mode with no zookeeper connection")
	}
}

func TestRegistry_Fallback_RegisterAndList(t *testing.T) {
	r := Connect(nil, nil)
	defer r.Close()

	node := domain.Node{Host: "10.0.0.1", Port: 9000, Region: "us-east"}
	if err := r.Register(node); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	nodes, err := r.List("us-east")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Host != "10.0.0.1" || nodes[0].Port != 9000 {
		t.Fatalf("unexpected nodes: %+v", nodes)
	}
}

func TestRegistry_Fallback_EmptyRegionFallsBackToAllNodes(t *testing.T) {
	r := Connect(nil, nil)
	defer r.Close()

	east := domain.Node{Host: "10.0.0.1", Port: 9000, Region: "us-east"}
	west := domain.Node{Host: "10.0.0.2", Port: 9001, Region: "us-west"}
	if err := r.Register(east); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if err := r.Register(west); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	nodes, err := r.List("eu-central")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected a fallback to all registered nodes, got %+v", nodes)
	}
}

func TestRegistry_Fallback_DefaultRegion(t *testing.T) {
	r := Connect(nil, nil)
	defer r.Close()

	if err := r.Register(domain.Node{Host: "10.0.0.1", Port: 9000}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	nodes, err := r.List("")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected the default-region node to be listed, got %+v", nodes)
	}
}

func TestRegistry_Fallback_UnregisterRemovesNode(t *testing.T) {
	r := Connect(nil, nil)
	defer r.Close()

	node := domain.Node{Host: "10.0.0.1", Port: 9000, Region: "us-east"}
	other := domain.Node{Host: "10.0.0.2", Port: 9001, Region: "us-east"}
	if err := r.Register(node); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if err := r.Register(other); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if err := r.Unregister(node); err != nil {
		t.Fatalf("Unregister returned error: %v", err)
	}

	nodes, err := r.List("us-east")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	for _, n := range nodes {
		if n.Host == node.Host && n.Port == node.Port {
			t.Fatalf("expected unregistered node to be absent, got %+v", nodes)
		}
	}
	if len(nodes) != 1 || nodes[0].Host != other.Host {
		t.Fatalf("expected only the remaining node, got %+v", nodes)
	}
}

func TestRegistry_Fallback_UnregisterUnknownNodeIsNoop(t *testing.T) {
	r := Connect(nil, nil)
	defer r.Close()

	if err := r.Unregister(domain.Node{Host: "10.0.0.1", Port: 9000}); err != nil {
		t.Fatalf("Unregister of an unknown node returned error: %v", err)
	}
}

func TestRegistry_Fallback_RegisterIsIdempotent(t *testing.T) {
	r := Connect(nil, nil)
	defer r.Close()

	node := domain.Node{Host: "10.0.0.1", Port: 9000, Region: "us-east"}
	if err := r.Register(node); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if err := r.Register(node); err != nil {
		t.Fatalf("second Register returned error: %v", err)
	}

	nodes, err := r.List("us-east")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("expected re-registering the same node to be idempotent, got %+v", nodes)
	}
}

func TestParseNodeName(t *testing.T) {
	node, ok := parseNodeName("10.0.0.1:9000")
	if !ok {
		t.Fatalf("expected parseNodeName to succeed")
	}
	if node.Host != "10.0.0.1" || node.Port != 9000 {
		t.Fatalf("unexpected node: %+v", node)
	}

	if _, ok := parseNodeName("not-a-host-port"); ok {
		t.Fatalf("expected parseNodeName to reject a malformed name")
	}
}

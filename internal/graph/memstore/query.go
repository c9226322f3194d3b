package memstore

// Nodes returns every node with label, in creation order.
func (s *Store) Nodes(label string) []Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Node
	for _, n := range s.nodes {
		if n.Label == label {
			out = append(out, n)
		}
	}
	return out
}

// Count returns the number of nodes with label.
func (s *Store) Count(label string) int {
	return len(s.Nodes(label))
}

// Node returns the node with id.
func (s *Store) Node(id int) (Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 0 || id >= len(s.nodes) {
		return Node{}, false
	}
	return s.nodes[id], true
}

// Find returns the node with label and key. For created labels (Play) the
// first match wins.
func (s *Store) Find(label, key string) (Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.nodes {
		if n.Label == label && n.Key == key {
			return n, true
		}
	}
	return Node{}, false
}

// Edges returns every relationship of type typ, in creation order.
func (s *Store) Edges(typ string) []Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Edge
	for _, e := range s.edges {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// EdgeCount returns the number of relationships of type typ.
func (s *Store) EdgeCount(typ string) int {
	return len(s.Edges(typ))
}

// Incoming returns relationships of type typ that end at node id.
func (s *Store) Incoming(id int, typ string) []Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Edge
	for _, e := range s.edges {
		if e.To == id && e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// Writes returns the number of mutations applied successfully.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

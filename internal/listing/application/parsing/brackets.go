package parsing

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// node es un nivel del árbol que forman las claves con corchetes:
// filter[price][gte]=10 queda como filter -> price -> gte = ["10"].
type node struct {
	values   []string
	children map[string]*node
}

func newNode() *node {
	return &node{children: map[string]*node{}}
}

// splitBracketKey separa "filter[price][gte]" en ("filter", ["price","gte"]).
// Los segmentos vacios ("[]") se descartan: el valor se acumula en el padre.
func splitBracketKey(key string) (string, []string, bool) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, nil, true
	}
	root := key[:open]
	rest := key[open:]
	var path []string
	for len(rest) > 0 {
		if rest[0] != '[' {
			return "", nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", nil, false
		}
		if seg := rest[1:end]; seg != "" {
			path = append(path, seg)
		}
		rest = rest[end+1:]
	}
	return root, path, true
}

// bracketTree reúne todas las claves con la raíz dada. Devuelve nil si no hay ninguna.
func bracketTree(raw url.Values, root string) *node {
	var tree *node
	for _, key := range sortedKeys(raw) {
		r, path, ok := splitBracketKey(key)
		if !ok || r != root {
			continue
		}
		if tree == nil {
			tree = newNode()
		}
		n := tree
		for _, seg := range path {
			child, ok := n.children[seg]
			if !ok {
				child = newNode()
				n.children[seg] = child
			}
			n = child
		}
		n.values = append(n.values, raw[key]...)
	}
	return tree
}

func (n *node) child(name string) *node {
	if n == nil {
		return nil
	}
	return n.children[name]
}

// first devuelve el primer valor del nodo, o "".
func (n *node) first() string {
	if n == nil || len(n.values) == 0 {
		return ""
	}
	return n.values[0]
}

func (n *node) isLeaf() bool {
	return n != nil && len(n.children) == 0
}

// isList indica que todos los hijos son índices: sort[0], sort[1]...
func (n *node) isList() bool {
	if n == nil || len(n.children) == 0 {
		return false
	}
	for k := range n.children {
		if _, err := strconv.Atoi(k); err != nil {
			return false
		}
	}
	return true
}

// keys devuelve los hijos en orden estable; los índices numéricos van en orden numérico.
func (n *node) keys() []string {
	keys := make([]string, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return keys[i] < keys[j]
	})
	return keys
}

// flatValues aplana valores propios e hijos indexados: between[0]=1&between[1]=5.
func (n *node) flatValues() []string {
	if n == nil {
		return nil
	}
	out := append([]string(nil), n.values...)
	if n.isList() {
		for _, k := range n.keys() {
			out = append(out, n.children[k].flatValues()...)
		}
	}
	return out
}

// toInterface convierte el árbol en la misma forma que produciría decodificar JSON:
// objetos como mapas, listas indexadas como slices y hojas como string.
func (n *node) toInterface() interface{} {
	if n == nil {
		return nil
	}
	if n.isLeaf() {
		switch len(n.values) {
		case 0:
			return nil
		case 1:
			return n.values[0]
		}
		out := make([]interface{}, len(n.values))
		for i, v := range n.values {
			out[i] = v
		}
		return out
	}
	if n.isList() {
		out := make([]interface{}, 0, len(n.children)+len(n.values))
		for _, v := range n.values {
			out = append(out, v)
		}
		for _, k := range n.keys() {
			out = append(out, n.children[k].toInterface())
		}
		return out
	}
	m := make(map[string]interface{}, len(n.children))
	for k, c := range n.children {
		m[k] = c.toInterface()
	}
	return m
}

func sortedKeys(raw url.Values) []string {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// hasBracketRoot indica si alguna clave tiene la forma root[...].
func hasBracketRoot(raw url.Values, roots ...string) bool {
	for key := range raw {
		for _, r := range roots {
			if strings.HasPrefix(key, r+"[") {
				return true
			}
		}
	}
	return false
}

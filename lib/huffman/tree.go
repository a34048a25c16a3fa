// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package huffman

import (
	"container/heap"
	"fmt"
)

// noChild marks the child slots of a leaf.
const noChild = -1

// node is one arena slot. A leaf has no children and carries a symbol;
// an internal node has exactly two children and carries the sum of
// their weights.
type node struct {
	weight uint64

	// sequence is stamped at creation and strictly increases across
	// the whole build: leaves first in ascending symbol order, then
	// internal nodes in the order they are formed. It is the only
	// tie-breaker between equal weights.
	sequence uint32

	left, right int32
	symbol      byte

	// synthetic marks a zero-weight fallback leaf added to a table
	// with fewer than two distinct symbols.
	synthetic bool
}

func (n *node) leaf() bool {
	return n.left == noChild
}

// Tree is a Huffman tree stored in an index-addressed arena. It is
// built once per frequency table and is immutable afterwards.
type Tree struct {
	nodes []node
	root  int32
}

// Build constructs the Huffman tree for table.
//
// Every symbol with a nonzero count becomes a leaf weighted by its
// count. If fewer than two such symbols exist (an empty or single-
// symbol input), zero-weight leaves carrying the lowest unused symbol
// values are added until there are two, so that every real symbol
// still gets a code of at least one bit.
//
// The two lowest nodes are repeatedly merged, the first removed
// becoming the left child, until one node remains. Ordering is by
// weight, then by sequence number, which makes the result identical
// on every platform and for every caller holding the same table.
func Build(table FrequencyTable) (*Tree, error) {
	var isLeaf [SymbolCount]bool
	var synthetic [SymbolCount]bool
	leafCount := 0
	for symbol, count := range table {
		if count > 0 {
			isLeaf[symbol] = true
			leafCount++
		}
	}
	for symbol := 0; leafCount < 2 && symbol < SymbolCount; symbol++ {
		if !isLeaf[symbol] {
			isLeaf[symbol] = true
			synthetic[symbol] = true
			leafCount++
		}
	}
	if leafCount < 2 {
		return nil, ErrEmptyAlphabet
	}

	tree := &Tree{nodes: make([]node, 0, 2*leafCount-1)}
	queue := &nodeQueue{tree: tree, items: make([]int32, 0, leafCount)}

	for symbol := range SymbolCount {
		if !isLeaf[symbol] {
			continue
		}
		index := tree.add(node{
			weight:    table[symbol],
			left:      noChild,
			right:     noChild,
			symbol:    byte(symbol),
			synthetic: synthetic[symbol],
		})
		queue.items = append(queue.items, index)
	}
	heap.Init(queue)

	for queue.Len() > 1 {
		left := heap.Pop(queue).(int32)
		right := heap.Pop(queue).(int32)
		parent := tree.add(node{
			weight: tree.nodes[left].weight + tree.nodes[right].weight,
			left:   left,
			right:  right,
		})
		heap.Push(queue, parent)
	}

	tree.root = heap.Pop(queue).(int32)
	return tree, nil
}

// add appends n to the arena, stamping its sequence number.
func (t *Tree) add(n node) int32 {
	index := int32(len(t.nodes))
	n.sequence = uint32(index)
	t.nodes = append(t.nodes, n)
	return index
}

// Weight returns the total weight at the root: the sum of the table's
// counts.
func (t *Tree) Weight() uint64 {
	return t.nodes[t.root].weight
}

// Leaves returns the number of leaves, synthetic ones included.
func (t *Tree) Leaves() int {
	return (len(t.nodes) + 1) / 2
}

// SyntheticLeaves returns the symbols of the zero-weight fallback
// leaves, in ascending order. Empty unless the table had fewer than
// two distinct symbols.
func (t *Tree) SyntheticLeaves() []byte {
	var symbols []byte
	for i := range t.nodes {
		if t.nodes[i].synthetic {
			symbols = append(symbols, t.nodes[i].symbol)
		}
	}
	return symbols
}

// Depth returns the length of the longest root-to-leaf path.
func (t *Tree) Depth() int {
	type frame struct {
		index int32
		depth int
	}
	deepest := 0
	stack := []frame{{index: t.root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		current := &t.nodes[top.index]
		if current.leaf() {
			deepest = max(deepest, top.depth)
			continue
		}
		stack = append(stack,
			frame{index: current.right, depth: top.depth + 1},
			frame{index: current.left, depth: top.depth + 1})
	}
	return deepest
}

// String renders the tree shape for debugging, one node per line.
func (t *Tree) String() string {
	type frame struct {
		index  int32
		indent string
	}
	var output []byte
	stack := []frame{{index: t.root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		current := &t.nodes[top.index]
		if current.leaf() {
			output = fmt.Appendf(output, "%sleaf #%d symbol=%#02x weight=%d\n",
				top.indent, current.sequence, current.symbol, current.weight)
			continue
		}
		output = fmt.Appendf(output, "%snode #%d weight=%d\n", top.indent, current.sequence, current.weight)
		stack = append(stack,
			frame{index: current.right, indent: top.indent + "  "},
			frame{index: current.left, indent: top.indent + "  "})
	}
	return string(output)
}

// nodeQueue is a min-heap of arena indices ordered by (weight,
// sequence). Sequence numbers are unique, so the order is total and
// the pop order does not depend on heap internals.
type nodeQueue struct {
	tree  *Tree
	items []int32
}

func (q *nodeQueue) Len() int { return len(q.items) }

func (q *nodeQueue) Less(i, j int) bool {
	a, b := &q.tree.nodes[q.items[i]], &q.tree.nodes[q.items[j]]
	if a.weight != b.weight {
		return a.weight < b.weight
	}
	return a.sequence < b.sequence
}

func (q *nodeQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *nodeQueue) Push(x any) { q.items = append(q.items, x.(int32)) }

func (q *nodeQueue) Pop() any {
	last := q.items[len(q.items)-1]
	q.items = q.items[:len(q.items)-1]
	return last
}

package menu

import "sort"

// Node is an item with its children in display order.
type Node struct {
	Item     Item
	Children []*Node
}

// BuildTree arranges items under RootID. Items whose parent is not in the
// list are treated as top level.
func BuildTree(items []Item) []*Node {
	nodes := make(map[int64]*Node, len(items))
	order := make([]int64, 0, len(items))
	for _, item := range items {
		nodes[item.ID] = &Node{Item: item}
		order = append(order, item.ID)
	}

	var roots []*Node
	for _, id := range order {
		node := nodes[id]
		parent, ok := nodes[node.Item.ParentID]
		if node.Item.ParentID == RootID || !ok || parent == node {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return siblingLess(nodes[i].Item, nodes[j].Item)
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

func siblingLess(a, b Item) bool {
	if a.Ordering != b.Ordering {
		return a.Ordering < b.Ordering
	}
	if a.Lft != b.Lft {
		return a.Lft < b.Lft
	}
	return a.ID < b.ID
}

// rootLess keeps the top level items of one menu contiguous in the nested set.
func rootLess(a, b Item) bool {
	if a.MenuType != b.MenuType {
		return a.MenuType < b.MenuType
	}
	return siblingLess(a, b)
}

// Renumber recomputes level, lft and rgt for every item from the parent
// links and sibling ordering. The root occupies lft 0. Items pointing at a
// missing parent, at themselves, or caught in a cycle are moved to the top
// level.
func Renumber(items []Item) []Item {
	out := append([]Item(nil), items...)
	index := make(map[int64]int, len(out))
	for i, item := range out {
		index[item.ID] = i
	}

	children := map[int64][]int{}
	for i := range out {
		parent := out[i].ParentID
		if _, ok := index[parent]; (!ok && parent != RootID) || parent == out[i].ID {
			out[i].ParentID = RootID
			parent = RootID
		}
		children[parent] = append(children[parent], i)
	}
	for parent, list := range children {
		less := siblingLess
		if parent == RootID {
			less = rootLess
		}
		sort.SliceStable(list, func(a, b int) bool {
			return less(out[list[a]], out[list[b]])
		})
	}

	visited := make([]bool, len(out))
	counter := 1
	var walk func(parent int64, level int)
	walk = func(parent int64, level int) {
		for _, i := range children[parent] {
			if visited[i] {
				continue
			}
			visited[i] = true
			out[i].Level = level
			out[i].Lft = counter
			counter++
			walk(out[i].ID, level+1)
			out[i].Rgt = counter
			counter++
		}
	}
	walk(RootID, 1)

	for i := range out {
		if visited[i] {
			continue
		}
		visited[i] = true
		out[i].ParentID = RootID
		out[i].Level = 1
		out[i].Lft = counter
		counter++
		walk(out[i].ID, 2)
		out[i].Rgt = counter
		counter++
	}
	return out
}

// descendants returns the ids below id.
func descendants(items []Item, id int64) map[int64]struct{} {
	children := map[int64][]int64{}
	for _, item := range items {
		children[item.ParentID] = append(children[item.ParentID], item.ID)
	}
	out := map[int64]struct{}{}
	stack := append([]int64(nil), children[id]...)
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := out[next]; ok || next == id {
			continue
		}
		out[next] = struct{}{}
		stack = append(stack, children[next]...)
	}
	return out
}

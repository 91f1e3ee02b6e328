// Package quadtree implements the spatial index behind Barnes-Hut many-body
// approximation and collision pruning.
//
// A [Tree] recursively splits a cubic region into 2^d equal cells (a
// quadtree in 2D, an octree in 3D, and so on up to [geom.MaxDim]). Every
// [Node] carries aggregates over its subtree: signed mass, absolute weight,
// weight-averaged centroid, largest item radius and item count.
//
// Trees are built from scratch by [Build] and never updated incrementally;
// callers rebuild once per tick and drop the tree afterwards.
//
// # Traversal
//
// [Tree.Visit] walks nodes in pre-order and lets the callback prune whole
// subtrees. [Tree.VisitAfter] walks in post-order. [MayCollide] is the
// conservative region test used to prune collision candidates: it never
// rejects a region that could hold an overlapping item.
package quadtree

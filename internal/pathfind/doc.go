// Package pathfind implements grid path searches over a walkability oracle.
//
// Two strategies share one entry point, Strategy.FindPath:
//
//   - AStar: 8-directional A* with a Manhattan heuristic.
//   - ThetaStar: any-angle Theta*, which re-parents a cell to its
//     grandparent whenever a rasterized line of sight exists.
//
// Every call owns its frontier, closed set, scores and parent map, so
// concurrent calls are independent as long as the oracle tolerates
// concurrent reads. Closed cells are never re-opened.
package pathfind

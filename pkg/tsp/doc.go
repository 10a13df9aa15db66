// Package tsp orders an unordered waypoint set into a short cyclic tour.
//
// A tour is built greedily by NearestNeighbor and then improved in place by a Routine of
// first-improvement local search methods (TwoOpt, ThreeOpt). Every method reads leg costs from a
// Distances table, usually a routing.DistanceTable, and interprets tour indices modulo the tour
// length. Costs may be asymmetric; a move is applied only if it strictly lowers the exact tour cost.
package tsp

// Package resolver computes the execution order of each phase.
//
// Commands of one phase become nodes of an index-keyed graph. goesBefore, goesAfter and
// requireBefore add ordering edges, nextCommands adds priority edges, and the members of a
// cycle are chained so that its loop region stays contiguous. The graph is checked for
// dependency cycles, then sorted topologically: a command's next-commands are emitted right
// after it when they become ready, and registration order breaks remaining ties. Commands
// whose trigger parameter is not truthy are dropped from the resulting order.
package resolver

/*
Package bt implements a frame-driven behavior tree interpreter.

A Tree is an arena of nodes addressed by Handle. The external game loop calls
Tree.Tick once per frame; the root node is ticked and dispatches to its
children according to its Kind:

  - Sequence runs children in order, one per tick, and fails fast.
  - Selector runs children in order, one per tick, and succeeds fast.
  - Parallel ticks every unfinished child each pass and settles once a
    success or failure threshold is reached, aborting children still running.
  - Monitor is a Parallel whose condition children are evaluated first.
  - Repeat re-runs its child within the same tick until it has succeeded
    Limit times.
  - Action and Condition are leaves carrying user logic.

Suspension is data: a node returning StatusRunning keeps its index and
counters, and the next tick resumes at exactly the same child.

Structural problems are reported by Tree.Validate. Hook-contract violations
(missing update hook, illegal status) panic with a *ContractError.
*/
package bt

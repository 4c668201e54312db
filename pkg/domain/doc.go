/*
Package domain contains the core domain models of the journey engine.

It defines the fundamental entities of a customer journey: the ordered States a
customer can occupy, the probabilistic Transitions between them, and the Journey
aggregate that owns both. This package is kept pure and free of I/O or
persistence concerns.

# Key Entities

  - State: A stage of the funnel (e.g. Awareness) with a dwell time in days.
  - Transition: A probabilistic edge between two states, labelled with the channel
    and trigger that move the customer forward.
  - Journey: The named, ordered set of states and transitions. It is immutable
    once validated; simulators and analyzers only read it.

# Positional semantics

The first declared state is the entry point of every simulated customer and the
last declared state is the conversion goal. This is a modeling convention, not
something inferred from the graph: reorder the states and the meaning of
"converted" changes with them.

For every state, the probability mass not assigned to an outbound transition
(1 - sum) is attrition: the chance that a customer abandons the journey there.
*/
package domain

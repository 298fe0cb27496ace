/*
Package auction implements settlement amounts for partially filled orders
whose amounts change linearly over time, such as ascending (English) and
descending (Dutch) auctions.
It leverages the [uint256] package for 256-bit integer arithmetic and the
[decimal] package for converting amounts to and from whole units.

# Features

  - Immutable 256-bit amounts, ensuring safe usage across multiple goroutines
  - Checked arithmetic: no amount ever wraps around
  - Linear interpolation of amounts with an explicit rounding direction
  - Exact partial fills: a fraction that leaves a remainder is an error,
    never a silently truncated amount
  - Conversion of amounts to and from decimals in whole units

# Representation

The Auction package consists of two main structs: Amount and FractionSpec.
An Amount represents a non-negative quantity in its smallest indivisible unit
(e.g. wei) and is implemented as a 256-bit unsigned integer.
A FractionSpec describes which portion of an order is filled and at which
point of the order's validity window the fill happens.

# Operations

The package provides three functions that compose:

  - [LocateCurrentAmount] returns the amount between a start and an end
    amount after a given time has elapsed.
  - [GetFraction] returns an exact fraction of an amount.
  - [ApplyFraction] applies a fraction to both the start and the end amount,
    and then locates the current amount between the results.

The [Item] type wraps [ApplyFraction] with the rounding direction that
favours the maker of an order.

# Rounding

[LocateCurrentAmount] and [ApplyFraction] round down or up depending on the
roundUp argument.
[GetFraction] never rounds.

# Errors

All functions are pure and panic-free, except for the MustXxx constructors.
Errors are returned in the following cases:

  - Overflow.
    An intermediate product or sum does not fit into 256 bits.
    The error wraps [ErrOverflow].

  - Inexact fraction.
    A fraction does not divide an amount without a remainder.
    The error wraps [ErrInexactFraction].

  - Division by zero.
    A duration or a denominator is 0.
    The error wraps [ErrDivisionByZero].

Errors are deterministic: retrying a failed call with the same arguments
fails the same way.
*/
package auction

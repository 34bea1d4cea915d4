/*
Package transfer implements the funds-transfer engine.

A transfer moves an amount between two accounts under three guarantees:

  - the same logical request is never applied twice (caller-supplied
    idempotency key, enforced by a unique index on the ledger),
  - a transfer is never partially applied (both balance writes and both
    ledger entries commit in one database transaction),
  - no committed state ever holds a negative balance.

Validation is ordered and fails fast; the external settlement rail is called
through a circuit breaker before any state is written, so a rail failure
aborts with nothing to roll back. Balance writes are conditional on the
account version read during validation; a concurrent writer surfaces as
ErrConcurrentModification and the engine never retries on its own.
*/
package transfer

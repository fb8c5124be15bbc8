/*
Package cfdb is an embedded entity store with secondary indexes kept in step
with the records they describe.

We implement:

1. Column families, named sorted key-value collections. Bolt stores each one as
a top-level bucket; Badger prefixes its keys with the family name.

2. Entities, records with a natural key, stored in a primary column family
(id → encoded record) through Operations.

3. Indexes, projections of an entity into another column family. Replacing
indexes keep one entry per key; history indexes append a timestamped entry on
every write.

4. Counters and a type registry in the system column families, handing out
record ids and numeric type codes.

# Technical Details

**Put.**
Put reads the stored version of the record, deletes the entries of its old
projections, writes the new ones and bumps the row counter. All of that goes
into one Batch committed in a single writable transaction, so a reader never
sees a record without its index entries.

**History keys.**
A history entry is stored under the projected key, a colon and the decimal
Unix time in nanoseconds. Deleting it removes every entry that starts with the
projected key and a colon.

**Key encoding.**
Integer keys are 8 bytes big-endian so that byte order equals numeric order.
Counters, the id sequence and type codes are stored as 8-byte little-endian
values.

**System families.**
cf.system holds the id sequence, cf.system.types maps type names to codes and
cf.system.counters holds named counters (the per-type row counts and the
number of registered types).
*/
package cfdb

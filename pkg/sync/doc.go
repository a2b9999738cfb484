/*
The sync package implements the orchestration of cemrc-sync. It moves project
directories from the instrument mirrors into the destination tree, where data
is organized as `group/user/project`.

A sync happens in two independent steps:
1) Enumeration -- The source tree is listed into a sequence of Units. A Unit
   is a single project directory, along with whatever the source layout says
   about who owns it. Enumeration never touches the destination.
2) Orchestration -- Each Unit is taken through the same state machine:
   its owner is resolved and its destination computed, the owner is checked
   against the permissions file, stale projects are skipped, the destination
   parent is created, and the project is copied. Every Unit ends in exactly
   one Outcome, and a failed Unit never stops the Units after it.

The copy is one-way and additive. Nothing is ever removed from the
destination, and running the same sync twice copies nothing the second time.

Staleness is judged by the modification time of the project directory itself,
not the files inside it. Some filesystems don't update a directory's mtime
when files are added deeper in the tree, so such projects can be skipped even
though they have new data.
*/
package sync

/*
Package ports defines the driven ports (interfaces) for the journey engine.

These interfaces decouple the service facade from storage implementations, so
journeys can live in memory, on disk, in Redis or SQLite, or in a read-only
catalog of definition files.

# Key Interfaces

  - JourneyReader: Loads and lists validated journeys.
  - JourneyStore: A JourneyReader that can also save and delete.
  - DistributedLocker: Serialises writes to one journey across replicas.

RunJourneyStoreContract and RunJourneyReaderContract are reusable test suites
that every adapter runs against itself.
*/
package ports

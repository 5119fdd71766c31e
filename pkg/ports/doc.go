/*
Package ports defines the driven ports (interfaces) of the Tally dashboard.

These interfaces decouple the chart coordinator from the places records come
from, the surfaces charts are drawn on and the signals that trigger refreshes.

# Key Interfaces

  - SnapshotSource / RecordStore: where leads, projects and payments live (memory, Redis, Loam).
  - Renderer / Instance: the surface a chart is materialized on (HTTP live view, terminal).
  - StyleSource: the root style variables the theme resolver reads.
  - TriggerSource / Publisher: long-running signal producers and the bus they publish to.
  - DistributedLocker: serializes record writes across replicas.
*/
package ports

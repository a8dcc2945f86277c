// Persistence of per-submission issue flags, with in-memory and redis implementations.
package flagstore

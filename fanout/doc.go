/*
Package fanout implements the composite event fan-out core: an asynchronous
per-binding FIFO publisher over a pluggable delivery sink, and an orchestrator
that decomposes one aggregate create/delete request into per-domain envelopes.
*/
package fanout

// Command exchange is the external collaborator around the matching
// core: a cobra CLI offering a randomized-order simulator, a throughput
// benchmark, and a CPU-profiling run, none of which are part of the
// core's own hard-engineering surface.
package main

func main() {
	Execute()
}

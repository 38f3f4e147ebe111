// Reaper - terminates compute instances the RIOS lifecycle manager
// should have terminated but did not.
package main

func main() {
	Execute()
}

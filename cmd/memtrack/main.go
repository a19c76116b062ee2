// Command memtrack drives the allocation-tracking layer from the command line.
package main

func main() {
	execute()
}

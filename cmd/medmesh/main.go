// Command medmesh serves and runs the clinical routing pipeline.
package main

func main() {
	Execute()
}

// Command tguidoc queries and checks Doxygen search data from the terminal.
package main

func main() {
	Execute()
}

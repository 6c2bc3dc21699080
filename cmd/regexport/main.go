// Command regexport enumerates Windows registry keys and prints them or
// exports them as CSV, XML, JSON or YAML.
package main

import "os"

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

package main

import "quill/service"

func main() {
	service.Execute()
}

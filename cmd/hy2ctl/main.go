package main

import (
	// Register plugins via side-effects
	_ "hy2ctl/internal/collectors/http"
	_ "hy2ctl/internal/publishers/file"
	_ "hy2ctl/internal/publishers/github"
	_ "hy2ctl/internal/publishers/stdout"
)

func main() {
	Execute()
}

package procexec

import "os"

func defaultEnviron() []string {
	return os.Environ()
}

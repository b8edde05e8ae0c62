package env

type Args struct {
	Test    *bool
	Verbose *bool
	Config  *string
}

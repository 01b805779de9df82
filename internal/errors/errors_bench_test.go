package errors

import (
	"fmt"
	"testing"
)

func BenchmarkCollector_Add(b *testing.B) {
	c := NewCollector()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Add(Diagnostic{
			Source:   fmt.Sprintf("Space.Page%d", i%100),
			Line:     i,
			Column:   i % 80,
			Message:  "broken link",
			Severity: SeverityError,
		})
	}
}

func BenchmarkCollector_BySource(b *testing.B) {
	c := NewCollector()
	for i := 0; i < 1000; i++ {
		c.AddError(fmt.Sprintf("Space.Page%d", i%10), NewParseError(ErrCodeSyntax, "bad", nil))
	}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		_ = c.BySource("Space.Page5")
	}
}

func BenchmarkCollector_Report(b *testing.B) {
	c := NewCollector()
	for i := 0; i < 200; i++ {
		c.AddError(fmt.Sprintf("Space.Page%d", i%20), NewParseError(ErrCodeSyntax, "bad", nil).WithLocation(i, 1))
	}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		_ = c.Report()
	}
}

func BenchmarkCollector_Concurrent(b *testing.B) {
	c := NewCollector()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			c.AddError("Main.WebHome", NewTransformationError(ErrCodeMacroFailed, "failed", nil))
		}
	})
}

func BenchmarkWikiError_Error(b *testing.B) {
	err := NewParseError(ErrCodeSyntax, "unexpected token", fmt.Errorf("eof")).WithLocation(10, 4)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		_ = err.Error()
	}
}

func BenchmarkSuggest(b *testing.B) {
	candidates := []string{"info", "warning", "error", "success", "code", "toc", "include", "html", "id"}

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		_ = Suggest("warnign", candidates)
	}
}

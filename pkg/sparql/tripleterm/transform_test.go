package tripleterm

import (
	"strings"
	"testing"

	"github.com/aleksaelezovic/factstore/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransform(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple",
			input:    "SELECT * WHERE { <<( :Alice :knows :Bob )>> :since ?d }",
			expected: "SELECT * WHERE { << :Alice :knows :Bob >> :since ?d }",
		},
		{
			name:     "no inner whitespace",
			input:    "<<(:a :b :c)>>",
			expected: "<< :a :b :c >>",
		},
		{
			name:     "whitespace around brackets",
			input:    "<<  ( :a :b :c )  >>",
			expected: "<< :a :b :c >>",
		},
		{
			name:     "nested object",
			input:    ":x :says <<( :a :b <<( :c :d :e )>> )>> .",
			expected: ":x :says << :a :b << :c :d :e >> >> .",
		},
		{
			name:     "content copied verbatim",
			input:    `<<( ?s  <http://example.org/p>   "v"@ar--rtl )>>`,
			expected: `<< ?s  <http://example.org/p>   "v"@ar--rtl >>`,
		},
		{
			name:     "parentheses inside term",
			input:    "<<( ?s ?p (1 2) )>>",
			expected: "<< ?s ?p (1 2) >>",
		},
		{
			name:     "canonical passthrough",
			input:    "SELECT * WHERE { << :a :b :c >> :p ?o }",
			expected: "SELECT * WHERE { << :a :b :c >> :p ?o }",
		},
		{
			name:     "double quoted string",
			input:    `:s :p "<<( :a :b :c )>>" .`,
			expected: `:s :p "<<( :a :b :c )>>" .`,
		},
		{
			name:     "single quoted string",
			input:    `:s :p '<<( :a :b :c )>>' . <<( :a :b :c )>> :q 1 .`,
			expected: `:s :p '<<( :a :b :c )>>' . << :a :b :c >> :q 1 .`,
		},
		{
			name:     "triple quoted string",
			input:    ":s :p \"\"\"line one \"quoted\"\n<<( :a :b :c )>>\"\"\" .",
			expected: ":s :p \"\"\"line one \"quoted\"\n<<( :a :b :c )>>\"\"\" .",
		},
		{
			name:     "triple single quoted string",
			input:    ":s :p '''it's <<( :a :b :c )>>''' .",
			expected: ":s :p '''it's <<( :a :b :c )>>''' .",
		},
		{
			name:     "escaped quote",
			input:    `:s :p "say \"<<( :a :b :c )>>\"" .`,
			expected: `:s :p "say \"<<( :a :b :c )>>\"" .`,
		},
		{
			name:     "apostrophe inside IRI",
			input:    "<http://example.org/O'Brien> :p <<( :a :b :c )>> .",
			expected: "<http://example.org/O'Brien> :p << :a :b :c >> .",
		},
		{
			name:     "comment",
			input:    "# <<( not a term\n<<( :a :b :c )>>",
			expected: "# <<( not a term\n<< :a :b :c >>",
		},
		{
			name:     "less-than operator",
			input:    "FILTER(?x < 5 && ?y > 2) <<( :a :b :c )>>",
			expected: "FILTER(?x < 5 && ?y > 2) << :a :b :c >>",
		},
		{
			name:     "no triple terms",
			input:    "SELECT ?s WHERE { ?s ?p ?o }",
			expected: "SELECT ?s WHERE { ?s ?p ?o }",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transform(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTransform_Idempotent(t *testing.T) {
	inputs := []string{
		"<<( :a :b :c )>>",
		"<<(:a :b <<(:c :d :e)>>)>> :p ?o",
		`:s :p "<<( x )>>" . <<( ?s ?p ?o )>> :q ?v`,
		"<< :a :b :c >>",
		"<<( :s :p (1 2) )>>",
		"<<( :s :p ( <<( :a :b :c )>> ) )>>",
		"",
	}

	for _, input := range inputs {
		once, err := Transform(input)
		require.NoError(t, err)
		twice, err := Transform(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "input %q", input)
	}
}

func TestTransform_DeepNesting(t *testing.T) {
	const depth = 50
	const innermost = ":Alice :knows :Bob"

	var b strings.Builder
	for i := 0; i < depth; i++ {
		b.WriteString("<<( :x :says ")
	}
	b.WriteString("<<( " + innermost + " )>>")
	for i := 0; i < depth; i++ {
		b.WriteString(" )>>")
	}

	got, err := Transform(b.String())
	require.NoError(t, err)
	assert.NotContains(t, got, "<<(")
	assert.NotContains(t, got, ")>>")
	assert.Contains(t, got, "<< "+innermost+" >>")
	assert.Equal(t, depth+1, strings.Count(got, "<<"))
	assert.Equal(t, depth+1, strings.Count(got, ">>"))
}

func TestTransform_Unclosed(t *testing.T) {
	inputs := []string{
		"<<( :Alice :knows :Bob ?p ?o }",
		"<<( :a :b <<( :c :d :e )>> ",
		"<<( :a :b :c ) .",
		`<<( :a :b ")>>"`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got, err := Transform(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnclosedTripleTerm))
			assert.Empty(t, got)
		})
	}
}

func TestTransform_CollectionSubject(t *testing.T) {
	inputs := []string{
		"<<( (1 2) :p :o )>>",
		"<<(( :a ) :p :o )>>",
		":x :y <<( :a :b <<(\n  (1) :c :d )>> )>>",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			got, err := Transform(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCollectionSubject))
			assert.False(t, errors.Is(err, ErrUnclosedTripleTerm))
			assert.Empty(t, got)
		})
	}

	// Output never contains << followed by (, so a second pass is a no-op
	once, err := Transform("<<( :s :p (1 2) )>>")
	require.NoError(t, err)
	assert.Equal(t, "<< :s :p (1 2) >>", once)
	assert.False(t, HasTripleTermSyntax(once))
}

func TestTransform_IterationLimit(t *testing.T) {
	transformer := NewTransformer(WithMaxIterations(10))

	_, err := transformer.Transform("<<( :a :b :c )>> " + strings.Repeat("?x ", 20))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIterationLimit))
	assert.False(t, errors.Is(err, ErrUnclosedTripleTerm))

	got, err := NewTransformer(WithMaxIterations(1000)).Transform("<<( :a :b :c )>>")
	require.NoError(t, err)
	assert.Equal(t, "<< :a :b :c >>", got)

	var zero Transformer
	got, err = zero.Transform("<<( :a :b :c )>>")
	require.NoError(t, err)
	assert.Equal(t, "<< :a :b :c >>", got)
}

func TestHasTripleTermSyntax(t *testing.T) {
	assert.True(t, HasTripleTermSyntax("SELECT * { <<( :a :b :c )>> :p ?o }"))
	assert.True(t, HasTripleTermSyntax("<< ( :a"))
	assert.False(t, HasTripleTermSyntax("SELECT * { << :a :b :c >> :p ?o }"))
	assert.False(t, HasTripleTermSyntax(`:s :p "<<( :a :b :c )>>"`))
	assert.False(t, HasTripleTermSyntax(`:s :p """<<( :a )>>"""`))
	assert.False(t, HasTripleTermSyntax("# <<( commented"))
	assert.False(t, HasTripleTermSyntax(""))
}

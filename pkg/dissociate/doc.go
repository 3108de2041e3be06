/*
Package dissociate implements Dissociated Press, the old trick of cutting
text into fragments and gluing them back together at random.

A Model is built by ingesting sentences. Every sentence is split into tokens
which are fused into fixed-size groups, the fragments. Each fragment remembers
which fragments came before and after it and at which positions it occurred.
Generate then picks a fragment that once began a sentence (or one given by
the caller) and walks the graph backward, forward or both ways, producing a
sentence that may never have been written.

	m := dissociate.NewModel()
	_ = m.Ingest("the cat sat")
	_ = m.Ingest("the dog ran")
	s, err := m.Generate(dissociate.WithStart("the"), dissociate.WithMaxSteps(1))
	// s is "the cat" or "the dog"

The model lives in memory only.
*/
package dissociate

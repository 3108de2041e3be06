/*
Package corpus keeps a SQLite record of every sentence fed into a
dissociate.Model.

The record serves two purposes. Generated sentences are checked against it so
that a plain copy of the input is never presented as something new, and a
fresh model can be rebuilt from it with Replay. Only the input text is stored;
the fragment graph itself is never written out.
*/
package corpus

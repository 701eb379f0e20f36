package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentPets(t *testing.T) {
	text := "intestazione\nMario Rossi\nGT Micio\n12/01/2024 visita\nCG Fido\nnota"
	blocks := SegmentPets(text)
	require.Len(t, blocks, 2)
	assert.Equal(t, "GT Micio\n12/01/2024 visita", blocks[0])
	assert.Equal(t, "CG Fido\nnota", blocks[1])

	assert.Empty(t, SegmentPets("nessun animale\nsolo testo"))
}

func TestParsePetBlock_NameAfterDate(t *testing.T) {
	block := "CG Labrador M 01/02/2015 Fido STERILIZZATO\nmicrochip 380260000123456\n12/03/2024 Visita"
	pet, ok := ParsePetBlock(block)
	require.True(t, ok)

	assert.Equal(t, SpeciesDog, pet.Species)
	assert.Equal(t, "Fido", pet.Name)
	assert.Equal(t, "Labrador", pet.Breed)
	assert.Equal(t, SexMale, pet.Sex)
	assert.Equal(t, "2015-02-01", pet.DOB)
	assert.Empty(t, pet.Color)
	require.NotNil(t, pet.Sterilized)
	assert.True(t, *pet.Sterilized)
	assert.Equal(t, "380260000123456", pet.Microchip)
	require.Len(t, pet.Visits, 1)
	assert.Equal(t, "2024-03-12", pet.Visits[0].VisitedAt)
}

func TestParsePetBlock_ParentheticalName(t *testing.T) {
	pet, ok := ParsePetBlock("GT Europeo F Micia (detta Mimi) 03/04/2019 tigrato INTERO")
	require.True(t, ok)

	assert.Equal(t, SpeciesCat, pet.Species)
	assert.Equal(t, "Micia (detta Mimi)", pet.Name)
	assert.Equal(t, "Europeo", pet.Breed)
	assert.Equal(t, SexFemale, pet.Sex)
	assert.Equal(t, "2019-04-03", pet.DOB)
	assert.Equal(t, "tigrato INTERO", pet.Color)
	require.NotNil(t, pet.Sterilized)
	assert.False(t, *pet.Sterilized)
	assert.Empty(t, pet.Visits)
	assert.NotNil(t, pet.Visits)
}

func TestParsePetBlock_NameBetweenSexAndDate(t *testing.T) {
	pet, ok := ParsePetBlock("CN Meticcio M Rex Jr 10/10/2018")
	require.True(t, ok)
	assert.Equal(t, "Rex Jr", pet.Name)
	assert.Equal(t, "Meticcio", pet.Breed)
	assert.Equal(t, "2018-10-10", pet.DOB)
}

func TestParsePetBlock_HeaderWithoutDate(t *testing.T) {
	pet, ok := ParsePetBlock("CT Pastore tedesco")
	require.True(t, ok)
	assert.Equal(t, SpeciesDog, pet.Species)
	assert.Equal(t, "Pastore tedesco", pet.Breed)
	assert.Empty(t, pet.Name)
	assert.Empty(t, pet.DOB)
	assert.Nil(t, pet.Sterilized)
}

func TestParsePetBlock_ColorBeforeDate(t *testing.T) {
	pet, ok := ParsePetBlock("GT Persiano bianco F 2/3/20 Neve")
	require.True(t, ok)
	assert.Equal(t, "bianco F", pet.Color)
	assert.Equal(t, "Persiano", pet.Breed)
	assert.Equal(t, "Neve", pet.Name)
	assert.Equal(t, "2020-03-02", pet.DOB)
}

func TestParsePetBlock_RejectsMissingCode(t *testing.T) {
	_, ok := ParsePetBlock("Labrador M 01/02/2015 Fido")
	assert.False(t, ok)
}

package main

import (
	"bufio"
	"flag"
	"fmt"
	"math"
	"os"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/notargets/globtim/report"
)

var (
	csvFile string
)

func main() {
	csvFilePtr := flag.String("csvFile", csvFile, "file containing the entries of a degree sweep")
	flag.Parse()
	csvFile = *csvFilePtr
	if len(csvFile) == 0 {
		flag.Usage()
		os.Exit(1)
	}
	fmt.Printf("Input file: %v\n", csvFile)
	studies, err := readCSV(csvFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	titles := make([]string, 0, len(studies))
	for title := range studies {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	for _, title := range titles {
		cs := studies[title]
		rate, ok := cs.Rate()
		fmt.Printf("Title = %s, Degrees = %v\n", cs.title, cs.degree)
		for i := range cs.degree {
			fmt.Printf("%d, %d, %v\n", cs.degree[i], cs.coefficients[i], cs.l2[i])
		}
		if ok {
			fmt.Printf("L2 ~ C * %.4f^-d\n", rate)
		} else {
			fmt.Println("L2 convergence rate undefined, fewer than two positive errors")
		}
	}
}

type ConvergenceStudy struct {
	title        string
	degree       []int
	coefficients []int
	l2           []float64
}

func NewConvergenceStudy(title string) *ConvergenceStudy {
	return &ConvergenceStudy{
		title: title,
	}
}

func (cs *ConvergenceStudy) Add(degree, coefficients int, l2 float64) {
	cs.degree = append(cs.degree, degree)
	cs.coefficients = append(cs.coefficients, coefficients)
	cs.l2 = append(cs.l2, l2)
}

// Rate fits log L2 = a - d log ρ over the entries with a positive finite
// error and returns ρ, the geometric convergence factor per degree.
func (cs *ConvergenceStudy) Rate() (rho float64, ok bool) {
	var x, y []float64
	for i, e := range cs.l2 {
		if e > 0 && !math.IsInf(e, 0) {
			x = append(x, float64(cs.degree[i]))
			y = append(y, math.Log(e))
		}
	}
	if len(x) < 2 || x[0] == x[len(x)-1] {
		return math.NaN(), false
	}
	_, beta := stat.LinearRegression(x, y, nil, false)
	return math.Exp(-beta), true
}

func readCSV(csvFile string) (studies map[string]*ConvergenceStudy, err error) {
	var (
		f    *os.File
		recs []report.SweepRecord
		ok   bool
		cs   *ConvergenceStudy
	)
	studies = make(map[string]*ConvergenceStudy)
	if f, err = os.Open(csvFile); err != nil {
		return
	}
	defer f.Close()
	if recs, err = report.ReadSweepCSV(bufio.NewReader(f)); err != nil {
		return
	}
	for _, rec := range recs {
		if cs, ok = studies[rec.Objective]; !ok {
			cs = NewConvergenceStudy(rec.Objective)
			studies[rec.Objective] = cs
		}
		cs.Add(rec.Degree, rec.Coefficients, rec.L2Norm)
	}
	return
}

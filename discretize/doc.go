// Package discretize converts continuous balanced weights into integer counts.
//
// After balancing, each distinct weight handle of a base element holds a real
// expansion weight. A Discretizer turns those weights into integer realized
// counts (Weight.SetCount) whose sum equals an integer total, such as the
// number of households in a block group.
package discretize
